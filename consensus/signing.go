// signing.go implements the signing-root facade (component K): one
// function per signable message kind, each wiring the message's hash
// tree root through the correct domain (4.J) into the SigningData
// envelope (4.H) that BLS signatures are actually produced over.
package consensus

import "github.com/attestant-tools/sign-core/ssz"

func signingRoot(objectRoot, domain [32]byte) [32]byte {
	return SigningData{ObjectRoot: objectRoot, Domain: domain}.HashTreeRoot()
}

// BlockHeaderSigningRoot signs a BeaconBlockHeader under
// DomainBeaconProposer at the epoch the header's slot falls in.
func BlockHeaderSigningRoot(spec *Spec, header BeaconBlockHeader, forkInfo ForkInfo) [32]byte {
	epoch := spec.ComputeEpochAtSlot(header.Slot)
	domain := ComputeDomain(DomainBeaconProposer, epoch, forkInfo)
	return signingRoot(header.HashTreeRoot(), domain)
}

// AttestationDataSigningRoot signs AttestationData under
// DomainBeaconAttester at the target checkpoint's epoch.
func AttestationDataSigningRoot(data AttestationData, forkInfo ForkInfo) [32]byte {
	domain := ComputeDomain(DomainBeaconAttester, data.Target.Epoch, forkInfo)
	return signingRoot(data.HashTreeRoot(), domain)
}

// AggregationSlotSigningRoot signs the slot a validator claims
// aggregator selection for, under DomainSelectionProof. The signed
// object is the bare SSZ uint64, not a container.
func AggregationSlotSigningRoot(spec *Spec, slot uint64, forkInfo ForkInfo) [32]byte {
	epoch := spec.ComputeEpochAtSlot(slot)
	domain := ComputeDomain(DomainSelectionProof, epoch, forkInfo)
	return signingRoot(ssz.HashTreeRootUint64(slot), domain)
}

// RandaoRevealSigningRoot signs the epoch a proposer reveals its
// randao mix for, under DomainRandao. The signed object is the bare
// SSZ uint64 epoch.
func RandaoRevealSigningRoot(epoch uint64, forkInfo ForkInfo) [32]byte {
	domain := ComputeDomain(DomainRandao, epoch, forkInfo)
	return signingRoot(ssz.HashTreeRootUint64(epoch), domain)
}

// VoluntaryExitSigningRoot signs a VoluntaryExit under
// DomainVoluntaryExit at the exit's own epoch.
func VoluntaryExitSigningRoot(exit VoluntaryExit, forkInfo ForkInfo) [32]byte {
	domain := ComputeDomain(DomainVoluntaryExit, exit.Epoch, forkInfo)
	return signingRoot(exit.HashTreeRoot(), domain)
}

// AggregateAndProofSigningRoot signs an AggregateAndProof under
// DomainAggregateAndProof at the epoch of the aggregated attestation's
// slot.
func AggregateAndProofSigningRoot(spec *Spec, proof AggregateAndProof, forkInfo ForkInfo) ([32]byte, error) {
	objectRoot, err := proof.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	epoch := spec.ComputeEpochAtSlot(proof.Aggregate.Data.Slot)
	domain := ComputeDomain(DomainAggregateAndProof, epoch, forkInfo)
	return signingRoot(objectRoot, domain), nil
}

// DepositMessageSigningRoot signs a DepositMessage under DomainDeposit.
// Deposits are valid across every fork, so the domain uses the
// message's own embedded genesis fork version and a zero genesis
// validators root rather than the epoch-selected ForkInfo every other
// kind uses (4.J).
func DepositMessageSigningRoot(msg DepositMessage) [32]byte {
	domain := computeDomainWithZeroRoot(DomainDeposit, msg.GenesisForkVersion)
	return signingRoot(msg.HashTreeRoot(), domain)
}

// ValidatorRegistrationSigningRoot signs a ValidatorRegistration under
// DomainApplicationBuilder, using the spec's genesis fork version and a
// zero genesis validators root (builder-API messages are not
// fork-scoped to a specific chain instance, 4.J).
func ValidatorRegistrationSigningRoot(spec *Spec, reg ValidatorRegistration) [32]byte {
	domain := computeDomainWithZeroRoot(DomainApplicationBuilder, spec.GenesisForkVersion)
	return signingRoot(reg.HashTreeRoot(), domain)
}

// SyncCommitteeMessageSigningRoot signs the block root a sync committee
// member votes for, under DomainSyncCommittee at the epoch the vote's
// slot falls in.
func SyncCommitteeMessageSigningRoot(spec *Spec, msg SyncCommitteeMessage, forkInfo ForkInfo) [32]byte {
	epoch := spec.ComputeEpochAtSlot(msg.Slot)
	domain := ComputeDomain(DomainSyncCommittee, epoch, forkInfo)
	return signingRoot(msg.HashTreeRoot(), domain)
}

// SyncCommitteeSelectionProofSigningRoot signs
// SyncAggregatorSelectionData under DomainSyncCommitteeSelectionProof
// at the epoch the candidacy's slot falls in.
func SyncCommitteeSelectionProofSigningRoot(spec *Spec, data SyncAggregatorSelectionData, forkInfo ForkInfo) [32]byte {
	epoch := spec.ComputeEpochAtSlot(data.Slot)
	domain := ComputeDomain(DomainSyncCommitteeSelectionProof, epoch, forkInfo)
	return signingRoot(data.HashTreeRoot(), domain)
}

// ContributionAndProofSigningRoot signs a ContributionAndProof under
// DomainContributionAndProof at the epoch of the contribution's slot.
// spec is used only for the slot-to-epoch conversion. The width of
// SyncCommitteeContribution.AggregationBits is whatever the caller built
// it with (see IsMinimalPreset / SyncCommitteeContributionSize); this
// function does not check it against spec.
func ContributionAndProofSigningRoot(spec *Spec, proof ContributionAndProof, forkInfo ForkInfo) [32]byte {
	epoch := spec.ComputeEpochAtSlot(proof.Contribution.Slot)
	domain := ComputeDomain(DomainContributionAndProof, epoch, forkInfo)
	return signingRoot(proof.HashTreeRoot(), domain)
}
