package validation

import (
	"strings"
	"testing"
)

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		email    string
		want     []string
	}{
		{
			name:     "acceptable password",
			password: "starlight-42",
			username: "newuser",
			email:    "new@example.com",
			want:     nil,
		},
		{
			name:     "too short",
			password: "tiny-pw",
			want:     []string{"at least 8 characters"},
		},
		{
			name:     "too common",
			password: "password123",
			want:     []string{"too common"},
		},
		{
			name:     "entirely numeric",
			password: "90210438",
			want:     []string{"entirely numeric"},
		},
		{
			name:     "similar to username",
			password: "student1-pw",
			username: "student1",
			want:     []string{"too similar to the username"},
		},
		{
			name:     "similar to email local part",
			password: "xmanager1x",
			email:    "manager1@example.com",
			want:     []string{"too similar to the email address"},
		},
		{
			name:     "every rule reported together",
			password: "1234567",
			want:     []string{"at least 8 characters", "entirely numeric"},
		},
		{
			name:     "short attributes are ignored",
			password: "abcdefgh",
			username: "abc",
			email:    "abc@example.com",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PasswordPolicy(tt.password, tt.username, tt.email)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d violations, got %d: %v", len(tt.want), len(got), got)
			}
			for i, rule := range tt.want {
				if !strings.Contains(got[i], rule) {
					t.Errorf("Expected violation %d to report %q, got %q", i, rule, got[i])
				}
			}
		})
	}
}
