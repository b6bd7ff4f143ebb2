package rpc

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/tutoradmin/internal/core"
	_ "github.com/JonMunkholm/tutoradmin/internal/core/tables"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var _ Service = (*MockService)(nil)

func TestDispatcher_TableVerbs(t *testing.T) {
	ctx := context.Background()
	tutor := core.Record{"id": int64(7), "firstName": "Grace"}

	tests := map[string]struct {
		path   []any
		expect func(m *MockService)
		want   any
	}{
		"retrieveAll": {
			path: []any{"tutors", "retrieveAll"},
			expect: func(m *MockService) {
				m.EXPECT().RetrieveAll(gomock.Any(), "tutors").
					Return(core.RecordCollection{"7": tutor}, nil)
			},
			want: core.RecordCollection{"7": tutor},
		},
		"create from decoded json": {
			path: []any{"tutors", "create", map[string]any{"firstName": "Grace"}},
			expect: func(m *MockService) {
				m.EXPECT().Create(gomock.Any(), "tutors", core.Record{"firstName": "Grace"}).
					Return(tutor, nil)
			},
			want: tutor,
		},
		"update": {
			path: []any{"tutors", "update", map[string]any{"id": float64(7)}},
			expect: func(m *MockService) {
				m.EXPECT().Update(gomock.Any(), "tutors", core.Record{"id": float64(7)}).Return(nil)
			},
		},
		"delete with json number": {
			path: []any{"tutors", "delete", float64(7)},
			expect: func(m *MockService) {
				m.EXPECT().Delete(gomock.Any(), "tutors", int64(7)).Return(nil)
			},
		},
		"submit": {
			path: []any{"requestForm", "submit", map[string]any{"mods": "1A"}},
			expect: func(m *MockService) {
				m.EXPECT().Submit(gomock.Any(), "requestForm", core.Record{"mods": "1A"}).
					Return(core.Record{"date": int64(1)}, nil)
			},
			want: core.Record{"date": int64(1)},
		},
		"rebuildHeaders": {
			path: []any{"learners", "rebuildHeaders"},
			expect: func(m *MockService) {
				m.EXPECT().RebuildHeaders(gomock.Any(), "learners").Return(nil)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockService(ctrl)
			test.expect(svc)

			env := New(svc).Handle(ctx, test.path)

			req := require.New(t)
			req.False(env.Error, env.Message)
			req.Empty(env.Code)
			req.Equal(test.want, env.Val)
		})
	}
}

func TestDispatcher_Commands(t *testing.T) {
	ctx := context.Background()

	tests := map[string]struct {
		path   []any
		expect func(m *MockService)
		want   any
	}{
		"syncDataFromForms": {
			path: []any{"command", "syncDataFromForms"},
			expect: func(m *MockService) {
				m.EXPECT().SyncDataFromForms(gomock.Any()).
					Return(core.SyncResult{Created: map[string]int{"tutors": 2}, Total: 2}, nil)
			},
			want: core.SyncResult{Created: map[string]int{"tutors": 2}, Total: 2},
		},
		"recalculateAttendance": {
			path: []any{"command", "recalculateAttendance"},
			expect: func(m *MockService) {
				m.EXPECT().RecalculateAttendance(gomock.Any()).
					Return(core.AttendanceResult{Changes: 3}, nil)
			},
			want: core.AttendanceResult{Changes: 3},
		},
		"generateSchedule": {
			path: []any{"command", "generateSchedule"},
			expect: func(m *MockService) {
				m.EXPECT().GenerateSchedule(gomock.Any()).Return([]core.ScheduleSlot{}, nil)
			},
			want: []core.ScheduleSlot{},
		},
		"retrieveMultiple with a list": {
			path: []any{"command", "retrieveMultiple", []any{"tutors", "learners"}},
			expect: func(m *MockService) {
				m.EXPECT().RetrieveMultiple(gomock.Any(), []string{"tutors", "learners"}).
					Return(map[string]core.RecordCollection{}, nil)
			},
			want: map[string]core.RecordCollection{},
		},
		"retrieveMultiple with spread names": {
			path: []any{"command", "retrieveMultiple", "tutors", "matchings"},
			expect: func(m *MockService) {
				m.EXPECT().RetrieveMultiple(gomock.Any(), []string{"tutors", "matchings"}).
					Return(map[string]core.RecordCollection{}, nil)
			},
			want: map[string]core.RecordCollection{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockService(ctrl)
			test.expect(svc)

			env := New(svc).Handle(ctx, test.path)

			req := require.New(t)
			req.False(env.Error, env.Message)
			req.Equal(test.want, env.Val)
		})
	}
}

func TestDispatcher_Failures(t *testing.T) {
	ctx := context.Background()

	tests := map[string]struct {
		path     []any
		expect   func(m *MockService)
		wantCode string
		wantMsg  string
	}{
		"empty path": {
			path:     []any{},
			wantCode: "RPC002",
		},
		"target not a string": {
			path:     []any{float64(3), "retrieveAll"},
			wantCode: "RPC002",
		},
		"unknown table": {
			path:     []any{"nope", "retrieveAll"},
			wantCode: "SCH001",
			wantMsg:  "table not found: table nope not found in schema registry",
		},
		"unknown command": {
			path:     []any{"command", "dropEverything"},
			wantCode: "RPC001",
			wantMsg:  `command "dropEverything": unknown command`,
		},
		"unknown verb": {
			path:     []any{"tutors", "truncate"},
			wantCode: "RPC001",
		},
		"missing verb": {
			path:     []any{"tutors"},
			wantCode: "RPC001",
		},
		"create without record": {
			path:     []any{"tutors", "create"},
			wantCode: "RPC002",
		},
		"create with a list": {
			path:     []any{"tutors", "create", []any{"x"}},
			wantCode: "RPC002",
		},
		"fractional id": {
			path:     []any{"tutors", "delete", 1.5},
			wantCode: "RPC002",
		},
		"retrieveMultiple with a number": {
			path:     []any{"command", "retrieveMultiple", []any{"tutors", float64(1)}},
			wantCode: "RPC002",
		},
		"service error keeps cause": {
			path: []any{"tutors", "delete", float64(42)},
			expect: func(m *MockService) {
				m.EXPECT().Delete(gomock.Any(), "tutors", int64(42)).
					Return(errors.Join(core.ErrNotFound, errors.New("id 42")))
			},
			wantCode: "REC001",
			wantMsg:  "primary key not found\nid 42",
		},
		"store failure": {
			path: []any{"command", "syncDataFromForms"},
			expect: func(m *MockService) {
				m.EXPECT().SyncDataFromForms(gomock.Any()).
					Return(core.SyncResult{}, errors.New("dial tcp: connection refused"))
			},
			wantCode: "DB001",
			wantMsg:  "dial tcp: connection refused",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockService(ctrl)
			if test.expect != nil {
				test.expect(svc)
			}

			env := New(svc).Handle(ctx, test.path)

			req := require.New(t)
			req.True(env.Error)
			req.Nil(env.Val)
			req.Equal(test.wantCode, env.Code)
			if test.wantMsg != "" {
				req.Equal(test.wantMsg, env.Message)
			}
		})
	}
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMockService(ctrl)
	svc.EXPECT().GenerateSchedule(gomock.Any()).DoAndReturn(
		func(context.Context) ([]core.ScheduleSlot, error) {
			panic("index out of range")
		})

	var env Envelope
	require.NotPanics(t, func() {
		env = New(svc).Handle(context.Background(), []any{"command", "generateSchedule"})
	})

	require.True(t, env.Error)
	require.Equal(t, "panic in command.generateSchedule: index out of range", env.Message)
	require.Equal(t, "ERR000", env.Code)
}

func TestLabels(t *testing.T) {
	tests := map[string]struct {
		path       []any
		wantTarget string
		wantVerb   string
	}{
		"table verb":      {path: []any{"tutors", "create"}, wantTarget: "tutors", wantVerb: "create"},
		"command":         {path: []any{"command", "generateSchedule"}, wantTarget: "command", wantVerb: "generateSchedule"},
		"unknown table":   {path: []any{"typo", "create"}, wantTarget: "unknown", wantVerb: "unknown"},
		"unknown verb":    {path: []any{"tutors", "explode"}, wantTarget: "tutors", wantVerb: "unknown"},
		"empty":           {path: nil, wantTarget: "unknown", wantVerb: "unknown"},
		"non string verb": {path: []any{"tutors", 5}, wantTarget: "tutors", wantVerb: "unknown"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			target, verb := labels(test.path)
			require.Equal(t, test.wantTarget, target)
			require.Equal(t, test.wantVerb, verb)
		})
	}
}
