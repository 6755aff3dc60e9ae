// domain.go implements the domain computer (component J): the 32-byte
// domain separator derived from a domain type, an epoch, and a fork
// context, mixed into every signing root.
package consensus

// DomainType is one of the closed set of 4-byte discriminants the
// beacon chain spec defines. Values are little-endian as they appear
// on the wire.
type DomainType [4]byte

// Domain type constants. SyncCommittee and ApplicationBuilder both map
// to 0x07000000 — a collision in the reference protocol, not a bug
// here; see DESIGN NOTES §9.
var (
	DomainBeaconProposer              = DomainType{0x00, 0x00, 0x00, 0x00}
	DomainBeaconAttester              = DomainType{0x01, 0x00, 0x00, 0x00}
	DomainRandao                      = DomainType{0x02, 0x00, 0x00, 0x00}
	DomainDeposit                     = DomainType{0x03, 0x00, 0x00, 0x00}
	DomainVoluntaryExit               = DomainType{0x04, 0x00, 0x00, 0x00}
	DomainSelectionProof              = DomainType{0x05, 0x00, 0x00, 0x00}
	DomainAggregateAndProof           = DomainType{0x06, 0x00, 0x00, 0x00}
	DomainApplicationBuilder          = DomainType{0x07, 0x00, 0x00, 0x00}
	DomainSyncCommittee               = DomainType{0x07, 0x00, 0x00, 0x00}
	DomainSyncCommitteeSelectionProof = DomainType{0x08, 0x00, 0x00, 0x00}
	DomainContributionAndProof        = DomainType{0x09, 0x00, 0x00, 0x00}
	DomainBlsToExecutionChange        = DomainType{0x0a, 0x00, 0x00, 0x00}
	DomainBlobSidecar                 = DomainType{0x0b, 0x00, 0x00, 0x00}
)

// ComputeDomain implements 4.J: select the fork version on either side
// of fork_info.fork.epoch by strict "<" comparison against epoch, hash
// the resulting ForkData, and prefix it with the domain type.
func ComputeDomain(domainType DomainType, epoch uint64, forkInfo ForkInfo) [32]byte {
	forkVersion := forkInfo.Fork.CurrentVersion
	if epoch < forkInfo.Fork.Epoch {
		forkVersion = forkInfo.Fork.PreviousVersion
	}
	return domainFromForkVersion(domainType, forkVersion, forkInfo.GenesisValidatorsRoot)
}

// computeDomainWithZeroRoot implements the two special cases in 4.J
// (Deposit and ApplicationBuilder) that use a zero genesis-validators-
// root and a fork version that is not epoch-selected: the message's own
// embedded genesis_fork_version for deposits, or the spec's
// genesis_fork_version for validator registrations.
func computeDomainWithZeroRoot(domainType DomainType, forkVersion [4]byte) [32]byte {
	return domainFromForkVersion(domainType, forkVersion, [32]byte{})
}

func domainFromForkVersion(domainType DomainType, forkVersion [4]byte, genesisValidatorsRoot [32]byte) [32]byte {
	forkData := ForkData{
		CurrentVersion:        forkVersion,
		GenesisValidatorsRoot: genesisValidatorsRoot,
	}
	forkDataRoot := forkData.HashTreeRoot()

	var domain [32]byte
	copy(domain[:4], domainType[:])
	copy(domain[4:], forkDataRoot[:28])
	return domain
}
