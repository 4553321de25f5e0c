// Package mocks fetcher.Fetcher 의 testify 기반 목 구현을 제공합니다.
package mocks

import (
	"net/http"

	"github.com/stretchr/testify/mock"
)

// MockFetcher fetcher.Fetcher 인터페이스의 목 구현입니다.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)

	var resp *http.Response
	if r := args.Get(0); r != nil {
		resp = r.(*http.Response)
	}
	return resp, args.Error(1)
}
