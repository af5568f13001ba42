package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/ssh"
)

// KeyServer imitates the GitHub <user>.keys endpoint.
type KeyServer struct {
	*httptest.Server
	mu       sync.RWMutex
	listings map[string]string
	Requests atomic.Int32
}

func NewKeyServer() *KeyServer {
	ks := &KeyServer{listings: map[string]string{}}
	ks.Server = httptest.NewServer(http.HandlerFunc(ks.serve))
	return ks
}

func (ks *KeyServer) serve(w http.ResponseWriter, r *http.Request) {
	ks.Requests.Add(1)

	user, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".keys")
	if !ok {
		http.NotFound(w, r)
		return
	}

	ks.mu.RLock()
	listing, found := ks.listings[user]
	ks.mu.RUnlock()
	if !found {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(listing))
}

// SetListing publishes a raw listing for user.
func (ks *KeyServer) SetListing(user, listing string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.listings[user] = listing
}

// AddRSAKeys publishes keys for user in authorized_keys format.
func (ks *KeyServer) AddRSAKeys(user string, keys ...*rsa.PublicKey) error {
	var listing strings.Builder
	for _, key := range keys {
		public, err := ssh.NewPublicKey(key)
		if err != nil {
			return err
		}
		listing.Write(ssh.MarshalAuthorizedKey(public))
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.listings[user] += listing.String()
	return nil
}

func GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, bits)
}
