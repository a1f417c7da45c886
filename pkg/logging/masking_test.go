package logging

import "testing"

func TestMaskAccount(t *testing.T) {
	tests := []struct {
		name    string
		account string
		enabled bool
		want    string
	}{
		{"mask enabled", "DE02120300000000202051", true, "DE******************51"},
		{"mask disabled", "DE02120300000000202051", false, "DE02120300000000202051"},
		{"short account", "1234", true, "1234"},
		{"empty", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAccount(tt.account, tt.enabled); got != tt.want {
				t.Errorf("MaskAccount(%q, %v) = %q, want %q", tt.account, tt.enabled, got, tt.want)
			}
		})
	}
}

func TestMaskUserID(t *testing.T) {
	if got := MaskUserID("testuser", true); got != "t******r" {
		t.Errorf("MaskUserID = %q, want %q", got, "t******r")
	}
	if got := MaskUserID("ab", true); got != "ab" {
		t.Errorf("short user ID should not be masked, got %q", got)
	}
}

func TestMaskPartial(t *testing.T) {
	if got := MaskPartial("1234567890", 3, 2, '*'); got != "123*****90" {
		t.Errorf("MaskPartial = %q, want %q", got, "123*****90")
	}
}

func TestMasker(t *testing.T) {
	m := NewMasker(true)
	if got := m.Account("DE02120300000000202051"); got != "DE******************51" {
		t.Errorf("Account = %q", got)
	}

	off := NewMasker(false)
	if got := off.UserID("testuser"); got != "testuser" {
		t.Errorf("disabled masker should pass through, got %q", got)
	}
}
