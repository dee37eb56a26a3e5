// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("PRIZE_TEST_STR", "value")

	if got := GetEnv("PRIZE_TEST_STR", "fallback"); got != "value" {
		t.Errorf("expected value, got %s", got)
	}
	if got := GetEnv("PRIZE_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %s", got)
	}
}

func TestInterceptorLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)

	InterceptorLogger(logger).Log(context.Background(), logging.LevelWarn, "slow call", "grpc.method", "Check", "grpc.code", "OK")

	out := buf.String()
	for _, want := range []string{`"level":"warning"`, `"msg":"slow call"`, `"grpc.method":"Check"`, `"grpc.code":"OK"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %s, got %s", want, out)
		}
	}
}

func TestScope(t *testing.T) {
	scope := NewScope(context.Background(), "test")
	defer scope.Finish()

	if scope.Ctx == nil || scope.Log == nil {
		t.Fatal("expected scope to carry context and logger")
	}

	child := scope.NewChildScope("child")
	child.SetAttributes("campaign", "summer")
	child.SetAttributes("version", uint64(3))
	child.TraceError(errors.New("boom"))
	child.Finish()

	if child.TraceID != scope.TraceID {
		t.Errorf("expected child to share trace id %s, got %s", scope.TraceID, child.TraceID)
	}
}
