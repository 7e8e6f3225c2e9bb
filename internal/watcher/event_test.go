package watcher

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name     string
		ops      []Op
		want     Op
		wantDrop bool
	}{
		{name: "create then modify", ops: []Op{OpCreated, OpModified, OpModified}, want: OpCreated},
		{name: "modify twice", ops: []Op{OpModified, OpModified}, want: OpModified},
		{name: "create then remove", ops: []Op{OpCreated, OpModified, OpRemoved}, wantDrop: true},
		{name: "modify then remove", ops: []Op{OpModified, OpRemoved}, want: OpRemoved},
		{name: "remove then create", ops: []Op{OpRemoved, OpCreated}, want: OpCreated},
		{name: "rename wins over modify", ops: []Op{OpModified, OpRenamed, OpModified}, want: OpRenamed},
		{name: "rename then remove", ops: []Op{OpRenamed, OpRemoved}, want: OpRenamed},
		{name: "attribute change keeps create", ops: []Op{OpCreated, OpAttributeChanged}, want: OpCreated},
		{name: "attribute then write", ops: []Op{OpAttributeChanged, OpModified}, want: OpModified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := tt.ops[0]
			dropped := false
			for _, next := range tt.ops[1:] {
				var drop bool
				op, drop = coalesce(op, next)
				if drop {
					dropped = true
					break
				}
			}
			if dropped != tt.wantDrop {
				t.Fatalf("drop = %v, want %v", dropped, tt.wantDrop)
			}
			if !tt.wantDrop && op != tt.want {
				t.Fatalf("op = %s, want %s", op, tt.want)
			}
		})
	}
}

func TestOpFromNotify(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Op
		ok   bool
	}{
		{in: fsnotify.Create, want: OpCreated, ok: true},
		{in: fsnotify.Create | fsnotify.Write, want: OpCreated, ok: true},
		{in: fsnotify.Write, want: OpModified, ok: true},
		{in: fsnotify.Remove, want: OpRemoved, ok: true},
		{in: fsnotify.Rename, want: OpRenamed, ok: true},
		{in: fsnotify.Chmod, want: OpAttributeChanged, ok: true},
		{in: 0, ok: false},
	}
	for _, tt := range tests {
		got, ok := opFromNotify(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("opFromNotify(%v) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
