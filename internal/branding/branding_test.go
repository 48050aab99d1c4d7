package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"CLIName", CLIName(), "bio"},
		{"HomeDir", HomeDir(), ".bio"},
		{"EnvPrefix", EnvPrefix(), "BIO"},
		{"NPMPackage", NPMPackage(), "bio-cli"},
		{"ConfigFile", ConfigFile(), ".biorc"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("registry"); got != "BIO_REGISTRY" {
		t.Errorf("EnvVar(registry) = %q, want %q", got, "BIO_REGISTRY")
	}
}
