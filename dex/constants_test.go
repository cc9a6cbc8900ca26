package dex_test

import (
	"testing"

	"github.com/fvrmatteo/DEXParse/dex"
)

func TestAccessFlagsString(t *testing.T) {
	tests := []struct {
		flags dex.AccessFlags
		want  string
	}{
		{0, ""},
		{dex.AccPublic, "public"},
		{dex.AccPublic | dex.AccStatic | dex.AccFinal, "public static final"},
		{dex.AccPrivate | dex.AccConstructor, "private constructor"},
		{dex.AccInterface | dex.AccAbstract | dex.AccSynthetic, "interface abstract synthetic"},
		{dex.AccProtected | dex.AccDeclaredSynchronized, "protected declared-synchronized"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("AccessFlags(0x%x): got %q, want %q", uint32(tt.flags), got, tt.want)
		}
	}
}
