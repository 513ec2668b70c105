package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return configPath
}

// 最小配置加载后补齐全部默认值
func TestMustLoadDefaults(t *testing.T) {
	configPath := writeTempConfig(t, `
Storage:
  RedisAddr: "127.0.0.1:6379"
  MySQL:
    DSN: "user:pass@tcp(127.0.0.1:3306)/bob_university"
`)

	loadedConfig := MustLoad(configPath)

	if loadedConfig.App.Addr != DefaultHTTPAddress {
		t.Errorf("监听地址应取默认值, got %s", loadedConfig.App.Addr)
	}
	if loadedConfig.Storage.Namespace != DefaultRedisNamespace {
		t.Errorf("命名空间应取默认值, got %s", loadedConfig.Storage.Namespace)
	}
	if loadedConfig.Storage.MaxKeep != DefaultMaxKeepRecords {
		t.Errorf("保留条数应取默认值, got %d", loadedConfig.Storage.MaxKeep)
	}
	if loadedConfig.Push.Endpoint != DefaultPushEndpoint {
		t.Errorf("推送地址应取默认值, got %s", loadedConfig.Push.Endpoint)
	}
	if loadedConfig.Push.Timeout != DefaultPushTimeout {
		t.Errorf("推送超时应取默认值, got %v", loadedConfig.Push.Timeout)
	}
}

// 显式配置覆盖默认值
func TestMustLoadExplicitValues(t *testing.T) {
	configPath := writeTempConfig(t, `
App:
  Addr: ":9000"
  RequestTimeout: 8s
Storage:
  RedisAddr: "127.0.0.1:6379"
  Namespace: "custom"
  MaxKeep: 500
  TTL: 24h
Push:
  Endpoint: "https://push.example.com/send"
  Timeout: 3s
CRM:
  BaseURL: "https://crm.example.com"
  APIKey: "key123"
`)

	loadedConfig := MustLoad(configPath)

	if loadedConfig.App.Addr != ":9000" || loadedConfig.App.RequestTimeout != 8*time.Second {
		t.Errorf("应用配置未生效: %+v", loadedConfig.App)
	}
	if loadedConfig.Storage.Namespace != "custom" || loadedConfig.Storage.TTL != 24*time.Hour {
		t.Errorf("存储配置未生效: %+v", loadedConfig.Storage)
	}
	if loadedConfig.Push.Endpoint != "https://push.example.com/send" {
		t.Errorf("推送配置未生效: %+v", loadedConfig.Push)
	}
}

// CRM 启用判定:BaseURL 与 APIKey 缺一不可
func TestCRMEnabled(t *testing.T) {
	cases := []struct {
		name string
		crm  CRM
		want bool
	}{
		{"都配置", CRM{BaseURL: "https://crm.example.com", APIKey: "k"}, true},
		{"缺密钥", CRM{BaseURL: "https://crm.example.com"}, false},
		{"缺地址", CRM{APIKey: "k"}, false},
		{"全空", CRM{}, false},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.crm.Enabled(); got != testCase.want {
				t.Errorf("Enabled() = %v, want %v", got, testCase.want)
			}
		})
	}
}

// 配置文件不存在时 panic
func TestMustLoadMissingFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("配置缺失应 panic")
		}
	}()

	MustLoad("/nonexistent/app.yaml")
}
