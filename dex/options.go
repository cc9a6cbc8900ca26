package dex

// Options configures validation and string table decoding.
type Options struct {
	// Versions lists the accepted 3-digit version strings.
	Versions []string

	// VerifyChecksum checks the Adler-32 of buffer[12:] against the header.
	VerifyChecksum bool

	// VerifySignature checks the SHA-1 of buffer[32:] against the header.
	VerifySignature bool

	// ContinueOnError keeps reading the string table after a malformed
	// entry. The bad entry is kept with Err set and all failures are
	// returned combined. When false the first bad entry fails the read.
	ContinueOnError bool

	// StrictUTF16Length rejects strings whose decoded UTF-16 length
	// differs from the declared utf16_size.
	StrictUTF16Length bool
}

// DefaultOptions returns default configuration.
func DefaultOptions() Options {
	return Options{
		Versions:       []string{Version035, Version036},
		VerifyChecksum: true,
	}
}

func (o Options) acceptsVersion(v string) bool {
	for _, accepted := range o.Versions {
		if v == accepted {
			return true
		}
	}
	return false
}
