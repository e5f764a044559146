package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:     ServerConfig{Port: 8080},
		Database:   DatabaseConfig{Driver: "postgres"},
		Auth:       AuthConfig{JWTSecret: "a-very-long-test-secret", TokenTTL: time.Hour},
		Pagination: PaginationConfig{DefaultPerPage: 15, MaxPerPage: 100},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]func(c *Config){
		"空密钥":     func(c *Config) { c.Auth.JWTSecret = "" },
		"密钥过短":    func(c *Config) { c.Auth.JWTSecret = "short" },
		"TTL为0":   func(c *Config) { c.Auth.TokenTTL = 0 },
		"端口越界":    func(c *Config) { c.Server.Port = 70000 },
		"未知驱动":    func(c *Config) { c.Database.Driver = "mysql" },
		"分页上限过小":  func(c *Config) { c.Pagination.MaxPerPage = 5 },
		"默认分页非正数": func(c *Config) { c.Pagination.DefaultPerPage = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BOOKCLUB_AUTH_JWT_SECRET", "env-provided-secret-123")
	t.Setenv("BOOKCLUB_DB_DRIVER", "sqlite")
	t.Setenv("BOOKCLUB_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 Port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("期望 Driver=sqlite，实际=%s", cfg.Database.Driver)
	}
	if cfg.Pagination.DefaultPerPage != 15 {
		t.Errorf("期望默认分页=15，实际=%d", cfg.Pagination.DefaultPerPage)
	}
	if cfg.Auth.TokenTTL != 720*time.Hour {
		t.Errorf("期望 TokenTTL=720h，实际=%v", cfg.Auth.TokenTTL)
	}
}
