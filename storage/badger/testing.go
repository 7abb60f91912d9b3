package badger

import "github.com/poiesic/ragchat/storage"

// NewMemoryRepositories opens an in-memory backend with a conversation
// repository and a passage index on top of it. The caller closes the backend.
func NewMemoryRepositories() (storage.ConversationRepository, *PassageIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	conversations, convErr := NewConversationRepository(backend)
	index, indexErr := NewPassageIndex(backend)
	if convErr != nil || indexErr != nil {
		_ = backend.Close()
		if convErr != nil {
			return nil, nil, nil, convErr
		}
		return nil, nil, nil, indexErr
	}
	return conversations, index, backend, nil
}
