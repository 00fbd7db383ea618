// Package mocks provides mock implementations for testing the profile
// reconciliation engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the engine's collaborator interfaces. The mocks are generated using
// go:generate directives and provide a fluent API for setting up test
// expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockAPI := mocks.NewMockAPI(ctrl)
//	mockAPI.EXPECT().FetchProfile(gomock.Any()).Return(&user, nil)
package mocks

// Generate mock for the API interface from internal/reconcile.
// This creates MockAPI with methods:
// FetchProfile, UpdateProfile, UploadTranscript, DeleteTranscript
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_api_mock.go github.com/campusorient/discovery-sync/internal/reconcile API

// Generate mock for the Sessions interface from internal/reconcile.
// This creates MockSessions with methods:
// Get, SetUser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sessions_mock.go github.com/campusorient/discovery-sync/internal/reconcile Sessions
