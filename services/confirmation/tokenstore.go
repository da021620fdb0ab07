package confirmation

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
)

// TokenStore is the durable client-side storage for access tokens. Content
// stays unlocked across visits once a token has been written.
type TokenStore interface {
	Put(reference string, token string) error
	Get(reference string) (string, bool, error)
}

type fileTokenStore struct {
	mutex sync.Mutex
	path  string
}

func NewFileTokenStore(path string) TokenStore {
	return &fileTokenStore{
		path: path,
	}
}

func (s *fileTokenStore) Put(reference string, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	tokens[reference] = token

	data, err := json.Marshal(tokens)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error marshalling tokens: %s", err))
	}

	err = os.WriteFile(s.path, data, 0600)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error writing token file %s: %s", s.path, err))
	}

	return nil
}

func (s *fileTokenStore) Get(reference string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tokens, err := s.read()
	if err != nil {
		return "", false, err
	}

	token, found := tokens[reference]
	return token, found, nil
}

func (s *fileTokenStore) read() (map[string]string, error) {
	tokens := map[string]string{}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return tokens, nil
	}
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error reading token file %s: %s", s.path, err))
	}

	err = json.Unmarshal(data, &tokens)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error parsing token file %s: %s", s.path, err))
	}

	return tokens, nil
}

type inMemoryTokenStore struct {
	mutex  sync.Mutex
	tokens map[string]string
}

func NewInMemoryTokenStore() TokenStore {
	return &inMemoryTokenStore{
		tokens: map[string]string{},
	}
}

func (s *inMemoryTokenStore) Put(reference string, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tokens[reference] = token
	return nil
}

func (s *inMemoryTokenStore) Get(reference string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	token, found := s.tokens[reference]
	return token, found, nil
}
