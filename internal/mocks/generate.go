// Package mocks provides mock implementations for testing the analysis cache
// and job orchestration system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces in internal/core. The generated files are checked
// in so tests build without a codegen step.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockCacheIndexRepository(ctrl)
//	mockRepo.EXPECT().Get(gomock.Any(), "lendsight:abc").Return(entry, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_index_repository_mock.go github.com/NCRC-org/justdata-sub002/internal/core CacheIndexRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_result_repository_mock.go github.com/NCRC-org/justdata-sub002/internal/core JobResultRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=section_repository_mock.go github.com/NCRC-org/justdata-sub002/internal/core SectionRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=usage_repository_mock.go github.com/NCRC-org/justdata-sub002/internal/core UsageRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=inflight_guard_mock.go github.com/NCRC-org/justdata-sub002/internal/core InflightGuard
