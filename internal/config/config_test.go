package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"BILLDOCS_DATA_PATH", "BILLDOCS_DOCUMENTS_KEY", "BILLDOCS_PROFILE_KEY",
		"BILLDOCS_CURRENCY_SYMBOL", "BILLDOCS_IMAGE_SCALE", "BILLDOCS_OUTPUT_DIR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataPath != "billdocs.db" || cfg.DocumentsKey != "saved_documents" || cfg.ProfileKey != "invoiceGen_businessInfo" {
		t.Fatalf("storage defaults = %+v", cfg)
	}
	if cfg.CurrencySymbol != "₦" || cfg.ImageScale != 2 || cfg.OutputDir != "." {
		t.Fatalf("render defaults = %+v", cfg)
	}
	if opts := cfg.RenderOptions(); opts.Scale != 2 || opts.CurrencySymbol != "₦" {
		t.Fatalf("render options = %+v", opts)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BILLDOCS_CURRENCY_SYMBOL", "$")
	t.Setenv("BILLDOCS_IMAGE_SCALE", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CurrencySymbol != "$" || cfg.ImageScale != 3 {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if lc := cfg.GetLoggerConfig(); lc.Level != "debug" {
		t.Fatalf("logger level = %q", lc.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"BILLDOCS_IMAGE_SCALE", "1", "at least 2"},
		{"BILLDOCS_IMAGE_SCALE", "two", "must be an integer"},
		{"BILLDOCS_PROFILE_KEY", "saved_documents", "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("BILLDOCS_DOCUMENTS_KEY", "")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}
