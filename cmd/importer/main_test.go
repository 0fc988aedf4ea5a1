package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ultramacro/backend/config"
	"ultramacro/backend/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-testing-2026"

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "auth:\n  jwt_secret: " + testSecret + "\n  issuer: ultramacro\n  access_token_ttl: 1h\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"migrate", "seed", "divisions", "courses", "enrollments", "token"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("缺少子命令 %s", name)
		}
	}
}

func TestEnrollmentsCmd_RequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"enrollments"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Error("缺少 FILE 参数时应返回错误")
	}
}

func TestTokenIssue(t *testing.T) {
	path := writeTestConfig(t)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"token", "issue", "--config", path, "--user", "ops-1"})
	root.SetOut(&out)

	if err := root.Execute(); err != nil {
		t.Fatalf("token issue 应成功: %v", err)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("输出应为 JSON: %v", err)
	}
	if result.ExpiresIn != 3600 {
		t.Errorf("期望 expires_in=3600，实际=%d", result.ExpiresIn)
	}

	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: testSecret, Issuer: "ultramacro"})
	claims, err := mgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("签发的 Token 应能通过校验: %v", err)
	}
	if claims.UserID != "ops-1" || claims.Role != "admin" {
		t.Errorf("Claims 错误: user=%s role=%s", claims.UserID, claims.Role)
	}
}

func TestPrintJSON_KeepsArabic(t *testing.T) {
	var out bytes.Buffer
	if err := printJSON(&out, map[string]string{"status": "لائحة"}); err != nil {
		t.Fatalf("printJSON 失败: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("لائحة")) {
		t.Errorf("输出不应转义非 ASCII 字符: %s", out.String())
	}
}
