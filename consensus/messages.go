// messages.go defines the consensus message schema (component H): the
// typed SSZ containers a remote signer is asked to produce a signing
// root for, plus their hash-tree-root computation built on the ssz
// package's Merkleization kernel.
package consensus

import (
	"github.com/attestant-tools/sign-core/errs"
	"github.com/attestant-tools/sign-core/ssz"
)

// MaxValidatorsPerCommittee bounds Attestation.AggregationBits, per the
// beacon chain's committee-size constant.
const MaxValidatorsPerCommittee = 2048

// Checkpoint is {epoch, root}.
type Checkpoint struct {
	Epoch uint64
	Root  [32]byte
}

func (c Checkpoint) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(c.Epoch),
		ssz.HashTreeRootBytes32(c.Root),
	}, 0)
}

// BeaconBlockHeader is the 5-field consensus block header container.
type BeaconBlockHeader struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    [32]byte
	StateRoot     [32]byte
	BodyRoot      [32]byte
}

func (h BeaconBlockHeader) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(h.Slot),
		ssz.HashTreeRootUint64(h.ProposerIndex),
		ssz.HashTreeRootBytes32(h.ParentRoot),
		ssz.HashTreeRootBytes32(h.StateRoot),
		ssz.HashTreeRootBytes32(h.BodyRoot),
	}, 0)
}

// AttestationData carries the vote a committee member signs. Index is
// hashed as the container's second field; under EIP-7549 callers set it
// to 0.
type AttestationData struct {
	Slot            uint64
	Index           uint64
	BeaconBlockRoot [32]byte
	Source          Checkpoint
	Target          Checkpoint
}

func (d AttestationData) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(d.Slot),
		ssz.HashTreeRootUint64(d.Index),
		ssz.HashTreeRootBytes32(d.BeaconBlockRoot),
		d.Source.HashTreeRoot(),
		d.Target.HashTreeRoot(),
	}, 0)
}

// Attestation pairs a committee aggregation bitlist with the data its
// signers attest to and the aggregate signature over it.
type Attestation struct {
	AggregationBits ssz.Bitlist
	Data            AttestationData
	Signature       [96]byte
}

func (a Attestation) HashTreeRoot() ([32]byte, error) {
	if a.AggregationBits.Len() > MaxValidatorsPerCommittee {
		return [32]byte{}, errs.New(errs.SSZError, "attestation aggregation_bits exceeds MAX_VALIDATORS_PER_COMMITTEE")
	}
	bitsRoot := ssz.BitlistHashTreeRoot(a.AggregationBits, MaxValidatorsPerCommittee)
	return ssz.Merkleize([][32]byte{
		bitsRoot,
		a.Data.HashTreeRoot(),
		ssz.HashTreeRootBytes96(a.Signature),
	}, 0), nil
}

// AggregateAndProof wraps an aggregated attestation with the proof that
// its submitter was selected to aggregate.
type AggregateAndProof struct {
	AggregatorIndex uint64
	Aggregate       Attestation
	SelectionProof  [96]byte
}

func (a AggregateAndProof) HashTreeRoot() ([32]byte, error) {
	aggregateRoot, err := a.Aggregate.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(a.AggregatorIndex),
		aggregateRoot,
		ssz.HashTreeRootBytes96(a.SelectionProof),
	}, 0), nil
}

// VoluntaryExit signals a validator's intent to leave the active set.
type VoluntaryExit struct {
	Epoch          uint64
	ValidatorIndex uint64
}

func (v VoluntaryExit) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(v.Epoch),
		ssz.HashTreeRootUint64(v.ValidatorIndex),
	}, 0)
}

// DepositMessage is the SSZ-hashed portion of a validator deposit.
// GenesisForkVersion is carried alongside the container but is not part
// of its hash tree root: deposits compute their own domain from the
// fork version embedded in the deposit data, per 4.J.
type DepositMessage struct {
	Pubkey                [48]byte
	WithdrawalCredentials [32]byte
	Amount                uint64
	GenesisForkVersion    [4]byte
}

func (d DepositMessage) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootBytes48(d.Pubkey),
		ssz.HashTreeRootBytes32(d.WithdrawalCredentials),
		ssz.HashTreeRootUint64(d.Amount),
	}, 0)
}

// ValidatorRegistration is the builder-API message a validator signs to
// register its fee recipient and gas preferences with a block builder.
type ValidatorRegistration struct {
	FeeRecipient [20]byte
	GasLimit     uint64
	Timestamp    uint64
	Pubkey       [48]byte
}

func (r ValidatorRegistration) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootAddress(r.FeeRecipient),
		ssz.HashTreeRootUint64(r.GasLimit),
		ssz.HashTreeRootUint64(r.Timestamp),
		ssz.HashTreeRootBytes48(r.Pubkey),
	}, 0)
}

// SyncCommitteeMessage is a single validator's vote for a block root as
// seen by the sync committee. Only BeaconBlockRoot is SSZ-hashed; Slot
// and ValidatorIndex drive domain/epoch selection and routing but are
// not part of the signed object, per the beacon chain spec.
type SyncCommitteeMessage struct {
	Slot            uint64
	BeaconBlockRoot [32]byte
	ValidatorIndex  uint64
}

func (m SyncCommitteeMessage) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootBytes32(m.BeaconBlockRoot)
}

// SyncAggregatorSelectionData is signed by a sync committee member to
// prove selection as a subcommittee aggregator.
type SyncAggregatorSelectionData struct {
	Slot              uint64
	SubcommitteeIndex uint64
}

func (s SyncAggregatorSelectionData) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(s.Slot),
		ssz.HashTreeRootUint64(s.SubcommitteeIndex),
	}, 0)
}

// SyncCommitteeContribution is one aggregator's view of a sync
// subcommittee's participation for a given slot. AggregationBits holds
// the participation Bitvector[N], where N is SYNC_COMMITTEE_SIZE /
// SYNC_COMMITTEE_SUBNET_COUNT (128 on mainnet, 8 on minimal) — the
// caller supplies a Bitvector already sized to the active preset, per
// DESIGN NOTES §9's generic-by-size-parameter approach.
type SyncCommitteeContribution struct {
	Slot              uint64
	BeaconBlockRoot   [32]byte
	SubcommitteeIndex uint64
	AggregationBits   ssz.Bitvector
	Signature         [96]byte
}

func (c SyncCommitteeContribution) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(c.Slot),
		ssz.HashTreeRootBytes32(c.BeaconBlockRoot),
		ssz.HashTreeRootUint64(c.SubcommitteeIndex),
		ssz.BitvectorHashTreeRoot(c.AggregationBits),
		ssz.HashTreeRootBytes96(c.Signature),
	}, 0)
}

// ContributionAndProof wraps a SyncCommitteeContribution with the proof
// that its aggregator was selected.
type ContributionAndProof struct {
	AggregatorIndex uint64
	Contribution    SyncCommitteeContribution
	SelectionProof  [96]byte
}

func (c ContributionAndProof) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootUint64(c.AggregatorIndex),
		c.Contribution.HashTreeRoot(),
		ssz.HashTreeRootBytes96(c.SelectionProof),
	}, 0)
}

// Fork identifies the previous/current protocol versions either side of
// a fork boundary at Epoch.
type Fork struct {
	PreviousVersion [4]byte
	CurrentVersion  [4]byte
	Epoch           uint64
}

// ForkInfo is the per-request fork context a caller supplies alongside
// every signing request.
type ForkInfo struct {
	Fork                  Fork
	GenesisValidatorsRoot [32]byte
}

// ForkData is the container domain computation hashes to derive the
// fork_data_root half of a domain separator.
type ForkData struct {
	CurrentVersion        [4]byte
	GenesisValidatorsRoot [32]byte
}

func (f ForkData) HashTreeRoot() [32]byte {
	var versionRoot [32]byte
	copy(versionRoot[:4], f.CurrentVersion[:])
	return ssz.Merkleize([][32]byte{
		versionRoot,
		ssz.HashTreeRootBytes32(f.GenesisValidatorsRoot),
	}, 0)
}

// SigningData is the outer envelope whose hash tree root is the signing
// root: the digest a BLS signature is actually produced over.
type SigningData struct {
	ObjectRoot [32]byte
	Domain     [32]byte
}

func (s SigningData) HashTreeRoot() [32]byte {
	return ssz.Merkleize([][32]byte{
		ssz.HashTreeRootBytes32(s.ObjectRoot),
		ssz.HashTreeRootBytes32(s.Domain),
	}, 0)
}
