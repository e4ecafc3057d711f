// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// 🔧 MockOperations is a mock implementation of Operations. GetAssetStatus
// answers from Records instead of recorded expectations.
type MockOperations struct {
	mock.Mock
	Records map[string]status.Record
}

var _ Operations = (*MockOperations)(nil)

func newMock(records map[string]status.Record) *MockOperations {
	if records == nil {
		records = map[string]status.Record{}
	}
	return &MockOperations{Records: records}
}

func (m *MockOperations) Status(ctx context.Context, paths []string, scope status.Scope) (bool, error) {
	args := m.Called(ctx, paths, scope)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) RequestStatus(paths []string, scope status.Scope) {
	m.Called(paths, scope)
}

func (m *MockOperations) GetAssetStatus(path string) status.Record {
	if r, ok := m.Records[path]; ok {
		r.Path = path
		return r
	}
	return status.NewRecord(path)
}

func (m *MockOperations) GetFilteredAssets(pred func(status.Record) bool) []status.Record {
	args := m.Called(pred)
	records := args.Get(0).([]status.Record)
	out := []status.Record{}
	for _, r := range records {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *MockOperations) Add(ctx context.Context, paths []string) (bool, error) {
	args := m.Called(ctx, paths)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) Revert(ctx context.Context, paths []string) (bool, error) {
	args := m.Called(ctx, paths)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) Delete(ctx context.Context, paths []string) (bool, error) {
	args := m.Called(ctx, paths)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) Commit(ctx context.Context, paths []string, message string) (bool, error) {
	args := m.Called(ctx, paths, message)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) GetLock(ctx context.Context, paths []string, mode svn.LockMode) (bool, error) {
	args := m.Called(ctx, paths, mode)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) ReleaseLock(ctx context.Context, paths []string) (bool, error) {
	args := m.Called(ctx, paths)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) Move(ctx context.Context, from, to string) (bool, error) {
	args := m.Called(ctx, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) ChangeListAdd(ctx context.Context, paths []string, name string) (bool, error) {
	args := m.Called(ctx, paths, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) ChangeListRemove(ctx context.Context, paths []string) (bool, error) {
	args := m.Called(ctx, paths)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) Resolve(ctx context.Context, paths []string, resolution svn.Resolution) (bool, error) {
	args := m.Called(ctx, paths, resolution)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) Update(ctx context.Context, paths []string) (bool, error) {
	args := m.Called(ctx, paths)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) Cleanup(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) RemoveFromDatabase(paths []string) {
	m.Called(paths)
}

func (m *MockOperations) ClearDatabase() {
	m.Called()
}
