package worker

import (
	"context"
	"errors"
	"testing"

	"welth/internal/amqp"
	"welth/internal/core"
	"welth/internal/ledger"
)

type fakeSource struct {
	accounts []core.Account
	err      error
}

func (f *fakeSource) ListAccounts(context.Context) ([]core.Account, error) {
	return f.accounts, f.err
}

func (f *fakeSource) GetAccount(_ context.Context, id string) (core.Account, error) {
	if f.err != nil {
		return core.Account{}, f.err
	}
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Account{}, core.ErrAccountNotFound
}

type fakeMirror struct {
	ids []string
	err error
}

func (f *fakeMirror) UpdateDefaultAccount(_ context.Context, id string) (ledger.UpdateResult, error) {
	f.ids = append(f.ids, id)
	if f.err != nil {
		return ledger.UpdateResult{}, f.err
	}
	return ledger.UpdateResult{Success: true}, nil
}

func TestHandleDefaultChanged(t *testing.T) {
	accounts := []core.Account{
		{ID: "a", IsDefault: false},
		{ID: "b", IsDefault: true},
	}
	tests := []struct {
		name       string
		source     *fakeSource
		mirrorErr  error
		accountID  string
		wantMirror []string
		wantErr    bool
	}{
		{"mirrors current default", &fakeSource{accounts: accounts}, nil, "b", []string{"b"}, false},
		{"stale message skipped", &fakeSource{accounts: accounts}, nil, "a", nil, false},
		{"deleted account skipped", &fakeSource{accounts: accounts}, nil, "zz", nil, false},
		{"storage failure requeues", &fakeSource{err: errors.New("db locked")}, nil, "b", nil, true},
		{"sheets failure requeues", &fakeSource{accounts: accounts}, errors.New("quota"), "b", []string{"b"}, true},
		{"row missing in sheet acked", &fakeSource{accounts: accounts}, core.ErrAccountNotFound, "b", []string{"b"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mirror := &fakeMirror{err: tt.mirrorErr}
			w := NewMirrorWorker(tt.source, mirror)
			err := w.HandleDefaultChanged(context.Background(), amqp.NewDefaultChangedMessage(tt.accountID, ""))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(mirror.ids) != len(tt.wantMirror) {
				t.Fatalf("mirrored %v, want %v", mirror.ids, tt.wantMirror)
			}
			for i := range mirror.ids {
				if mirror.ids[i] != tt.wantMirror[i] {
					t.Fatalf("mirrored %v, want %v", mirror.ids, tt.wantMirror)
				}
			}
		})
	}
}

func TestStartupSync(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewMirrorWorker(&fakeSource{accounts: []core.Account{{ID: "a"}, {ID: "b", IsDefault: true}}}, mirror)
	if err := w.StartupSync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mirror.ids) != 1 || mirror.ids[0] != "b" {
		t.Fatalf("expected b mirrored, got %v", mirror.ids)
	}

	mirror = &fakeMirror{}
	w = NewMirrorWorker(&fakeSource{accounts: []core.Account{{ID: "a"}}}, mirror)
	if err := w.StartupSync(context.Background()); err != nil || len(mirror.ids) != 0 {
		t.Fatalf("expected no-op without default, got ids=%v err=%v", mirror.ids, err)
	}
}
