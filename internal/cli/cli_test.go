package cli

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"quizhub-service/internal/config"
	"quizhub-service/internal/infra/memory"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"start", "migrate", "repair"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("expected %s command, got %v (%v)", name, cmd, err)
		}
	}
}

func TestOpenStoresDefaultsToMemory(t *testing.T) {
	st, err := openStores(context.Background(), config.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	defer st.close()
	if _, ok := st.quizzes.(*memory.QuizRepository); !ok {
		t.Fatalf("expected memory quiz store, got %T", st.quizzes)
	}
	if _, ok := st.locker.(*memory.SubmissionLocker); !ok {
		t.Fatalf("expected memory locker, got %T", st.locker)
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	if err := runMigrationsWithConfig(context.Background(), config.Config{}, zap.NewNop()); err == nil {
		t.Fatalf("expected error without postgres url")
	}
}
