package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/ssh"
)

func wireBlob(fields ...[]byte) []byte {
	var b cryptobyte.Builder
	for _, field := range fields {
		b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(field)
		})
	}
	return b.BytesOrPanic()
}

func listingLine(blob []byte) string {
	return "ssh-rsa " + base64.StdEncoding.EncodeToString(blob)
}

func TestParseWireKeyMatchesGeneratedKey(t *testing.T) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	public, err := ssh.NewPublicKey(&private.PublicKey)
	require.NoError(t, err)

	key, err := ParseWireKey(public.Marshal())
	require.NoError(t, err)

	assert.Equal(t, private.PublicKey.N.Bytes(), key.Modulus)
	assert.Len(t, key.Modulus, 256)
}

func TestParseKeyListAuthorizedKeysFormat(t *testing.T) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	public, err := ssh.NewPublicKey(&private.PublicKey)
	require.NoError(t, err)

	listing := string(ssh.MarshalAuthorizedKey(public)) +
		"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAbcdefghijklmnopqrstuvwxyz0123456789ABCDEF\n" +
		"ecdsa-sha2-nistp256 AAAAE2VjZHNhLXNoYTItbmlzdHAyNTY=\n"

	keys, err := ParseKeyList(listing)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, private.PublicKey.N.Bytes(), keys[0].Modulus)
}

func TestParseKeyListKeepsOrder(t *testing.T) {
	first := wireBlob([]byte("ssh-rsa"), []byte{0x01, 0x00, 0x01}, []byte{0x0a})
	second := wireBlob([]byte("ssh-rsa"), []byte{0x03}, []byte{0x0b})

	keys, err := ParseKeyList(listingLine(first) + "\n\n" + listingLine(second) + "\n")
	require.NoError(t, err)
	require.Len(t, keys, 2)

	assert.Equal(t, []byte{0x0a}, keys[0].Modulus)
	assert.Equal(t, []byte{0x0b}, keys[1].Modulus)
	assert.Equal(t, []byte{0x03}, keys[1].Exponent)
}

func TestParseKeyListEmpty(t *testing.T) {
	keys, err := ParseKeyList("")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestParseKeyListMissingBody(t *testing.T) {
	_, err := ParseKeyList("ssh-rsa\n")
	assert.ErrorIs(t, err, ErrMalformedKeyList)
}

func TestParseKeyListBadBase64(t *testing.T) {
	_, err := ParseKeyList("ssh-rsa not*base64\n")
	assert.ErrorIs(t, err, ErrMalformedKeyData)
}

func TestParseWireKey(t *testing.T) {
	tests := []struct {
		name     string
		blob     []byte
		err      error
		modulus  []byte
		exponent []byte
	}{
		{
			name:     "strips one sign byte",
			blob:     wireBlob([]byte("ssh-rsa"), []byte{0x01, 0x00, 0x01}, []byte{0x00, 0xc3, 0x01}),
			modulus:  []byte{0xc3, 0x01},
			exponent: []byte{0x01, 0x00, 0x01},
		},
		{
			name:     "strips at most one zero",
			blob:     wireBlob([]byte("ssh-rsa"), []byte{0x03}, []byte{0x00, 0x00, 0x7f}),
			modulus:  []byte{0x00, 0x7f},
			exponent: []byte{0x03},
		},
		{
			name:     "no sign byte",
			blob:     wireBlob([]byte("ssh-rsa"), []byte{0x03}, []byte{0x7f, 0x01}),
			modulus:  []byte{0x7f, 0x01},
			exponent: []byte{0x03},
		},
		{
			name: "trailing bytes",
			blob: append(wireBlob([]byte("ssh-rsa"), []byte{0x03}, []byte{0x7f}), 0x00),
			err:  ErrMalformedKeyData,
		},
		{
			name: "length exceeds remaining bytes",
			blob: []byte{0x00, 0x00, 0x00, 0x07, 's', 's', 'h', '-', 'r', 's', 'a', 0x00, 0x00, 0x00, 0x09, 0x01},
			err:  ErrMalformedKeyData,
		},
		{
			name: "zero length exponent",
			blob: wireBlob([]byte("ssh-rsa"), []byte{}, []byte{0x7f}),
			err:  ErrMalformedKeyData,
		},
		{
			name: "missing modulus",
			blob: wireBlob([]byte("ssh-rsa"), []byte{0x03}),
			err:  ErrMalformedKeyData,
		},
		{
			name: "only sign byte",
			blob: wireBlob([]byte("ssh-rsa"), []byte{0x03}, []byte{0x00}),
			err:  ErrMalformedKeyData,
		},
		{
			name: "other algorithm inside blob",
			blob: wireBlob([]byte("ssh-dss"), []byte{0x03}, []byte{0x7f}),
			err:  ErrUnsupportedKeyType,
		},
		{
			name: "empty blob",
			blob: nil,
			err:  ErrMalformedKeyData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseWireKey(tt.blob)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.modulus, key.Modulus)
			assert.Equal(t, tt.exponent, key.Exponent)
		})
	}
}

func TestParseKeyListPropagatesBlobErrors(t *testing.T) {
	blob := wireBlob([]byte("ssh-ed25519"), []byte{0x03}, []byte{0x7f})

	_, err := ParseKeyList(listingLine(blob))
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)
}
