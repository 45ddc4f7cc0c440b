package app

import "testing"

func TestDepsCommand_Registration(t *testing.T) {
	found := false
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "deps" {
			found = true
			break
		}
	}

	if !found {
		t.Error("deps command not registered with root command")
	}
}

func TestDepsCommand_LimitFlagDefault(t *testing.T) {
	flag := depsCmd.Flags().Lookup("limit")
	if flag == nil {
		t.Fatal("limit flag not defined")
	}
	if flag.DefValue != "0" {
		t.Errorf("limit flag default: got %s, want 0", flag.DefValue)
	}
}

func TestLimitLines(t *testing.T) {
	table := "HEADER\n------\nrow1\nrow2\nrow3\n"

	tests := []struct {
		name  string
		limit int
		want  string
	}{
		{"no limit", 0, table},
		{"limit below row count", 2, "HEADER\n------\nrow1\nrow2\n"},
		{"limit at row count", 3, table},
		{"limit above row count", 10, table},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := limitLines(table, tt.limit)
			if got != tt.want {
				t.Errorf("limitLines(%d) = %q, want %q", tt.limit, got, tt.want)
			}
		})
	}
}
