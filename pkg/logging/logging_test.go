package logging

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"info":    slog.LevelInfo,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"debug":   slog.LevelDebug,
		"":        slog.LevelDebug,
		"verbose": slog.LevelDebug,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestDbErrGroupsMethodAndError(t *testing.T) {
	attr := DbErr("CreateTask", errors.New("boom"))

	assert.Equal(t, "db", attr.Key)
	group := attr.Value.Group()
	assert.Len(t, group, 2)
	assert.Equal(t, "CreateTask", group[0].Value.String())
	assert.Equal(t, "boom", group[1].Value.String())
}
