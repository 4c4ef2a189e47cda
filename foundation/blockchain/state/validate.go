package state

// ValidateChain re-verifies the whole chain from the genesis block forward.
// A nil error means every block's recomputed hash matches its content and
// every block links to its predecessor.
func (s *State) ValidateChain() error {
	s.evHandler("state: ValidateChain: started: blocks[%d]", s.db.Height())
	defer s.evHandler("state: ValidateChain: completed")

	if err := s.db.ValidateChain(); err != nil {
		s.evHandler("state: ValidateChain: ERROR: %s", err)
		return err
	}

	return nil
}
