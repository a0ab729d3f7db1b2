package command

import (
	"fmt"

	"jsonvault/internal/protocol"
	"jsonvault/internal/storage"
)

// StateMachine applies committed log entries to the document store. It is
// driven exclusively by the consensus applier, one entry at a time, in
// log order.
type StateMachine struct {
	store *storage.Store
}

func NewStateMachine(store *storage.Store) *StateMachine {
	return &StateMachine{store: store}
}

// Apply decodes a committed command and mutates the store. Only mutating
// variants ever reach the log; anything else is a programming error on
// the propose side.
func (m *StateMachine) Apply(data []byte) (any, error) {
	cmd, err := protocol.DecodeCommand(data)
	if err != nil {
		return nil, fmt.Errorf("decode committed command: %w", err)
	}

	switch c := cmd.(type) {
	case *protocol.SetCommand:
		m.store.Set(c.Key, c.Value)
		return nil, nil
	case *protocol.DeleteCommand:
		m.store.Delete(c.Key)
		return nil, nil
	case *protocol.MergeCommand:
		m.store.Merge(c.Key, c.Value)
		return nil, nil
	case *protocol.QSetCommand:
		return nil, m.store.QuerySet(c.Key, c.Path, c.Value)
	default:
		return nil, fmt.Errorf("non-mutating command %s in log", protocol.CommandName(cmd))
	}
}
