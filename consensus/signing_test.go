package consensus

import "testing"

func TestAttestationDataSigningRoot(t *testing.T) {
	data := AttestationData{
		Slot:            10,
		Index:           0,
		BeaconBlockRoot: repeat(0x05),
		Source:          Checkpoint{Epoch: 1, Root: repeat(0x01)},
		Target:          Checkpoint{Epoch: 2, Root: repeat(0x02)},
	}
	forkInfo := ForkInfo{
		Fork: Fork{
			CurrentVersion: [4]byte{0x01, 0x00, 0x00, 0x00},
			Epoch:          0,
		},
	}

	got := AttestationDataSigningRoot(data, forkInfo)
	want := "f85fd9ac4ce27b2826647f17881886551c6d31a9bc7dc7d98fc04f07f61ea5a9"
	if hexString(got[:]) != want {
		t.Fatalf("attestation signing root = %s, want %s", hexString(got[:]), want)
	}
}

func TestVoluntaryExitSigningRootUsesExitEpochNotForkEpoch(t *testing.T) {
	exit := VoluntaryExit{Epoch: 5, ValidatorIndex: 1}
	forkInfo := ForkInfo{
		Fork: Fork{
			PreviousVersion: [4]byte{0x00, 0x00, 0x00, 0x00},
			CurrentVersion:  [4]byte{0x01, 0x00, 0x00, 0x00},
			Epoch:           10,
		},
	}

	got := VoluntaryExitSigningRoot(exit, forkInfo)

	domain := ComputeDomain(DomainVoluntaryExit, exit.Epoch, forkInfo)
	want := signingRoot(exit.HashTreeRoot(), domain)
	if got != want {
		t.Fatalf("voluntary exit signing root = %x, want %x", got, want)
	}
}

func TestDepositMessageSigningRootIgnoresGenesisValidatorsRoot(t *testing.T) {
	msg := DepositMessage{
		Pubkey:                repeat48(0x01),
		WithdrawalCredentials: repeat(0x02),
		Amount:                32_000_000_000,
		GenesisForkVersion:    [4]byte{0x00, 0x00, 0x00, 0x01},
	}

	got := DepositMessageSigningRoot(msg)

	domain := computeDomainWithZeroRoot(DomainDeposit, msg.GenesisForkVersion)
	want := signingRoot(msg.HashTreeRoot(), domain)
	if got != want {
		t.Fatalf("deposit signing root = %x, want %x", got, want)
	}
}

func TestValidatorRegistrationSigningRootUsesSpecGenesisForkVersion(t *testing.T) {
	reg := ValidatorRegistration{
		FeeRecipient: repeat20(0x03),
		GasLimit:     30_000_000,
		Timestamp:    1_700_000_000,
		Pubkey:       repeat48(0x04),
	}
	spec := &Spec{GenesisForkVersion: [4]byte{0x00, 0x00, 0x00, 0x01}}

	got := ValidatorRegistrationSigningRoot(spec, reg)

	domain := computeDomainWithZeroRoot(DomainApplicationBuilder, spec.GenesisForkVersion)
	want := signingRoot(reg.HashTreeRoot(), domain)
	if got != want {
		t.Fatalf("validator registration signing root = %x, want %x", got, want)
	}
}

func TestBlockHeaderSigningRootUsesSlotEpoch(t *testing.T) {
	spec := &Spec{SlotsPerEpoch: 32}
	header := BeaconBlockHeader{
		Slot:          65, // epoch 2
		ProposerIndex: 4,
		ParentRoot:    repeat(0x11),
		StateRoot:     repeat(0x22),
		BodyRoot:      repeat(0x33),
	}
	forkInfo := ForkInfo{Fork: Fork{CurrentVersion: [4]byte{0x01, 0, 0, 0}, Epoch: 0}}

	got := BlockHeaderSigningRoot(spec, header, forkInfo)

	domain := ComputeDomain(DomainBeaconProposer, 2, forkInfo)
	want := signingRoot(header.HashTreeRoot(), domain)
	if got != want {
		t.Fatalf("block header signing root = %x, want %x", got, want)
	}
}

func repeat20(b byte) [20]byte {
	var out [20]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func repeat48(b byte) [48]byte {
	var out [48]byte
	for i := range out {
		out[i] = b
	}
	return out
}
