package model

import (
	"errors"
	"testing"
)

func TestCommandValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{"valid start", StartCommand("http://site.com"), nil},
		{"valid stop", StopCommand("http://site.com"), nil},
		{"valid list", ListCommand(), nil},
		{"start without url", Command{Kind: CommandStart}, ErrMissingURL},
		{"stop without url", Command{Kind: CommandStop}, ErrMissingURL},
		{"unknown kind", Command{Kind: "restart", URL: "http://site.com"}, ErrUnknownCommand},
		{"empty kind", Command{}, ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cmd.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCommandWireRoundTrip(t *testing.T) {
	t.Parallel()

	commands := []Command{
		StartCommand("http://site.com/a"),
		StopCommand("http://site.com"),
		ListCommand(),
	}

	for _, cmd := range commands {
		t.Run(cmd.String(), func(t *testing.T) {
			t.Parallel()

			data, err := cmd.Encode()
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}

			decoded, err := DecodeCommand(data)
			if err != nil {
				t.Fatalf("DecodeCommand() failed: %v", err)
			}

			if decoded != cmd {
				t.Errorf("round trip changed command: %+v != %+v", decoded, cmd)
			}
		})
	}
}

func TestDecodeCommandRejectsGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", "start http://site.com"},
		{"empty", ""},
		{"unknown kind", `{"kind":"pause","url":"http://site.com"}`},
		{"missing url", `{"kind":"start"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := DecodeCommand([]byte(tt.data)); err == nil {
				t.Errorf("DecodeCommand(%q) succeeded, want error", tt.data)
			}
		})
	}
}
