package curation

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

const (
	// kSubmission stores encoded submissions by gallery+submission id.
	kSubmission byte = 0x01
	// kAvailable is the per gallery submission counter.
	kAvailable byte = 0x02
	// kAccepted maps gallery+accepted rank to the submission id.
	kAccepted byte = 0x03
	// kAcceptedLen is the per gallery accepted counter.
	kAcceptedLen byte = 0x04
	// kSystemTotal counts accepted nfts over all galleries.
	kSystemTotal byte = 0x05
)

// Status is the curation state of a submission, Pending moves to Accepted or Rejected once.
type Status uint8

const (
	StatusPending  Status = 0
	StatusAccepted Status = 1
	StatusRejected Status = 2
)

// String prints the status as lower-case text for events and logs.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Submission is one raw nft candidate. A zero Owner means the slot is empty.
type Submission struct {
	Owner   sdk.Address
	Status  Status
	DataRef string
}

func submissionKey(g, id uint64) string {
	return contract.KeyU64U64(kSubmission, g, id)
}

func availableKey(g uint64) string {
	return contract.KeyU64(kAvailable, g)
}

func acceptedKey(g, aid uint64) string {
	return contract.KeyU64U64(kAccepted, g, aid)
}

func acceptedLenKey(g uint64) string {
	return contract.KeyU64(kAcceptedLen, g)
}

func encodeSubmission(s *Submission) string {
	w := contract.NewWriter()
	w.WriteAddress(s.Owner)
	_ = w.WriteByte(byte(s.Status))
	w.WriteString(s.DataRef)
	return w.String()
}

func decodeSubmission(data string) (*Submission, error) {
	r := contract.NewStringReader(data)
	s := &Submission{}
	var err error
	if s.Owner, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	s.Status = Status(b)
	if s.DataRef, err = r.ReadString(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadSubmission returns the empty submission for unknown slots.
func loadSubmission(st sdk.State, g, id uint64) (*Submission, error) {
	ptr := st.Get(submissionKey(g, id))
	if ptr == nil {
		return &Submission{}, nil
	}
	s, err := decodeSubmission(*ptr)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "submission %d/%d unreadable: %v", g, id, err)
	}
	return s, nil
}

func saveSubmission(st sdk.State, g, id uint64, s *Submission) {
	st.Set(submissionKey(g, id), encodeSubmission(s))
}
