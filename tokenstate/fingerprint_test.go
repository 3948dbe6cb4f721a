package tokenstate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msoica/redis-jwt-hash-store-validator/tokenstate"
)

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		first := tokenstate.Fingerprint("eyJhbGc.eyJzdWI.signature")
		second := tokenstate.Fingerprint("eyJhbGc.eyJzdWI.signature")
		require.Equal(t, first, second)
	})

	t.Run("known vectors", func(t *testing.T) {
		require.Equal(t,
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			tokenstate.Fingerprint(""))
		require.Equal(t,
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
			tokenstate.Fingerprint("abc"))
	})

	t.Run("fixed length lowercase hex", func(t *testing.T) {
		digest := tokenstate.Fingerprint("any token at all")
		require.Len(t, digest, 64)
		require.Regexp(t, "^[0-9a-f]{64}$", digest)
	})

	t.Run("distinct tokens distinct digests", func(t *testing.T) {
		require.NotEqual(t, tokenstate.Fingerprint("tok-A"), tokenstate.Fingerprint("tok-B"))
	})
}
