package main

import "testing"

func TestSolcVersionPatternExtractsVersion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"solc, the solidity compiler commandline interface\nVersion: 0.8.24+commit.e11b9ed9.Linux.g++\n", "0.8.24"},
		{"0.8.19", "0.8.19"},
		{"no version here", ""},
	}
	for _, c := range cases {
		if got := solcVersionPattern.FindString(c.in); got != c.want {
			t.Errorf("FindString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewLoggerAcceptsEveryKnownLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN", "garbage"} {
		if l := newLogger(level); l == nil {
			t.Errorf("newLogger(%q) returned nil", level)
		}
	}
}
