package dex

import (
	"crypto/sha1"
	"encoding/binary"

	"github.com/fvrmatteo/DEXParse/errors"
)

// ComputeChecksum returns the Adler-32 of buf[12:], the value the header's
// checksum field must hold.
func ComputeChecksum(buf []byte) (uint32, error) {
	if len(buf) < signatureOffset {
		return 0, errors.UnexpectedEOF(errors.PhaseHeader, 0, signatureOffset, len(buf))
	}
	return Adler32(buf[signatureOffset:]), nil
}

// ComputeSignature returns the SHA-1 of buf[32:], the value the header's
// signature field must hold.
func ComputeSignature(buf []byte) ([20]byte, error) {
	if len(buf) < fileSizeOffset {
		return [20]byte{}, errors.UnexpectedEOF(errors.PhaseHeader, 0, fileSizeOffset, len(buf))
	}
	return sha1.Sum(buf[fileSizeOffset:]), nil
}

// UpdateChecksum recomputes the checksum and stores it in buf.
func UpdateChecksum(buf []byte) error {
	sum, err := ComputeChecksum(buf)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[checksumOffset:], sum)
	return nil
}

// UpdateSignature recomputes the signature and stores it in buf. The checksum
// covers the signature, so call UpdateChecksum afterwards.
func UpdateSignature(buf []byte) error {
	sig, err := ComputeSignature(buf)
	if err != nil {
		return err
	}
	copy(buf[signatureOffset:fileSizeOffset], sig[:])
	return nil
}

// Repair recomputes the signature and then the checksum of buf in place.
func Repair(buf []byte) error {
	if err := UpdateSignature(buf); err != nil {
		return err
	}
	return UpdateChecksum(buf)
}
