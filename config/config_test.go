package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("YTTH_AUTH_JWT_SECRET", "0123456789abcdef")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望端口 8080，实际: %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != "memory" || cfg.Blob.Driver != "inline" {
		t.Errorf("期望 memory/inline，实际: %s/%s", cfg.Store.Driver, cfg.Blob.Driver)
	}
	if cfg.Auth.AccessTokenTTL != 12*time.Hour {
		t.Errorf("期望 Token 有效期 12h，实际: %v", cfg.Auth.AccessTokenTTL)
	}
	if !cfg.Feature.EnforceYearLock {
		t.Error("期望默认开启学年锁定校验")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
store:
  driver: sqlite
  sqlite_path: /tmp/ytth.db
auth:
  jwt_secret: from-file-secret-123
blob:
  driver: s3
  s3:
    bucket: ytth-attachments
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YTTH_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("环境变量应覆盖配置文件，期望 7070，实际: %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "/tmp/ytth.db" {
		t.Errorf("store 配置错误: %+v", cfg.Store)
	}
	if cfg.Blob.S3.Bucket != "ytth-attachments" {
		t.Errorf("期望 bucket=ytth-attachments，实际: %s", cfg.Blob.S3.Bucket)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server: ServerConfig{Port: 8080},
			Store:  StoreConfig{Driver: "memory"},
			Auth:   AuthConfig{JWTSecret: "0123456789abcdef"},
			Blob:   BlobConfig{Driver: "inline"},
		}
	}

	cases := map[string]func(*Config){
		"空密钥":      func(c *Config) { c.Auth.JWTSecret = "" },
		"密钥过短":     func(c *Config) { c.Auth.JWTSecret = "short" },
		"端口越界":     func(c *Config) { c.Server.Port = 70000 },
		"未知存储":     func(c *Config) { c.Store.Driver = "mongo" },
		"s3 缺少桶名": func(c *Config) { c.Blob.Driver = "s3" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}

	ok := base()
	if err := ok.Validate(); err != nil {
		t.Errorf("合法配置不应报错: %v", err)
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", Timezone: "UTC"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Errorf("期望 %s，实际: %s", want, got)
	}
}
