// codec.go implements the JSON conventions §6 specifies for the
// signing-request wire format: quoted-decimal integers and 0x-prefixed
// lowercase hex byte arrays, with hex field lengths checked against
// their declared SSZ size.
package consensus

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/attestant-tools/sign-core/errs"
)

// decodeHexField decodes a 0x-prefixed hex string into exactly n bytes.
func decodeHexField(field, s string, n int) ([]byte, error) {
	if len(s) < 2 || s[:2] != "0x" {
		return nil, errs.New(errs.BadHex, fmt.Sprintf("%s: missing 0x prefix", field))
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, errs.Wrap(errs.BadHex, fmt.Sprintf("%s: malformed hex", field), err)
	}
	if len(b) != n {
		return nil, errs.New(errs.BadLength, fmt.Sprintf("%s: expected %d bytes, got %d", field, n, len(b)))
	}
	return b, nil
}

func encodeHexField(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// decodeQuotedUint64 parses a JSON quoted-decimal integer string.
func decodeQuotedUint64(field string, raw json.RawMessage) (uint64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errs.Wrap(errs.BadJSON, fmt.Sprintf("%s: expected quoted decimal string", field), err)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.Wrap(errs.BadJSON, fmt.Sprintf("%s: malformed decimal integer", field), err)
	}
	return v, nil
}

func encodeQuotedUint64(v uint64) json.RawMessage {
	return json.RawMessage(strconv.Quote(strconv.FormatUint(v, 10)))
}

// --- wire shapes ---

type checkpointWire struct {
	Epoch json.RawMessage `json:"epoch"`
	Root  string          `json:"root"`
}

func (c Checkpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(checkpointWire{
		Epoch: encodeQuotedUint64(c.Epoch),
		Root:  encodeHexField(c.Root[:]),
	})
}

func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var w checkpointWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.BadJSON, "malformed checkpoint", err)
	}
	epoch, err := decodeQuotedUint64("checkpoint.epoch", w.Epoch)
	if err != nil {
		return err
	}
	root, err := decodeHexField("checkpoint.root", w.Root, 32)
	if err != nil {
		return err
	}
	c.Epoch = epoch
	copy(c.Root[:], root)
	return nil
}

type beaconBlockHeaderWire struct {
	Slot          json.RawMessage `json:"slot"`
	ProposerIndex json.RawMessage `json:"proposer_index"`
	ParentRoot    string          `json:"parent_root"`
	StateRoot     string          `json:"state_root"`
	BodyRoot      string          `json:"body_root"`
}

func (h BeaconBlockHeader) MarshalJSON() ([]byte, error) {
	return json.Marshal(beaconBlockHeaderWire{
		Slot:          encodeQuotedUint64(h.Slot),
		ProposerIndex: encodeQuotedUint64(h.ProposerIndex),
		ParentRoot:    encodeHexField(h.ParentRoot[:]),
		StateRoot:     encodeHexField(h.StateRoot[:]),
		BodyRoot:      encodeHexField(h.BodyRoot[:]),
	})
}

func (h *BeaconBlockHeader) UnmarshalJSON(data []byte) error {
	var w beaconBlockHeaderWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.BadJSON, "malformed beacon block header", err)
	}
	slot, err := decodeQuotedUint64("header.slot", w.Slot)
	if err != nil {
		return err
	}
	proposerIndex, err := decodeQuotedUint64("header.proposer_index", w.ProposerIndex)
	if err != nil {
		return err
	}
	parentRoot, err := decodeHexField("header.parent_root", w.ParentRoot, 32)
	if err != nil {
		return err
	}
	stateRoot, err := decodeHexField("header.state_root", w.StateRoot, 32)
	if err != nil {
		return err
	}
	bodyRoot, err := decodeHexField("header.body_root", w.BodyRoot, 32)
	if err != nil {
		return err
	}
	h.Slot = slot
	h.ProposerIndex = proposerIndex
	copy(h.ParentRoot[:], parentRoot)
	copy(h.StateRoot[:], stateRoot)
	copy(h.BodyRoot[:], bodyRoot)
	return nil
}

type forkWire struct {
	PreviousVersion string          `json:"previous_version"`
	CurrentVersion  string          `json:"current_version"`
	Epoch           json.RawMessage `json:"epoch"`
}

func (f Fork) MarshalJSON() ([]byte, error) {
	return json.Marshal(forkWire{
		PreviousVersion: encodeHexField(f.PreviousVersion[:]),
		CurrentVersion:  encodeHexField(f.CurrentVersion[:]),
		Epoch:           encodeQuotedUint64(f.Epoch),
	})
}

func (f *Fork) UnmarshalJSON(data []byte) error {
	var w forkWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.BadJSON, "malformed fork", err)
	}
	prev, err := decodeHexField("fork.previous_version", w.PreviousVersion, 4)
	if err != nil {
		return err
	}
	cur, err := decodeHexField("fork.current_version", w.CurrentVersion, 4)
	if err != nil {
		return err
	}
	epoch, err := decodeQuotedUint64("fork.epoch", w.Epoch)
	if err != nil {
		return err
	}
	copy(f.PreviousVersion[:], prev)
	copy(f.CurrentVersion[:], cur)
	f.Epoch = epoch
	return nil
}

type forkInfoWire struct {
	Fork                  Fork   `json:"fork"`
	GenesisValidatorsRoot string `json:"genesis_validators_root"`
}

func (fi ForkInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(forkInfoWire{
		Fork:                  fi.Fork,
		GenesisValidatorsRoot: encodeHexField(fi.GenesisValidatorsRoot[:]),
	})
}

func (fi *ForkInfo) UnmarshalJSON(data []byte) error {
	var w forkInfoWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.BadJSON, "malformed fork info", err)
	}
	gvr, err := decodeHexField("fork_info.genesis_validators_root", w.GenesisValidatorsRoot, 32)
	if err != nil {
		return err
	}
	fi.Fork = w.Fork
	copy(fi.GenesisValidatorsRoot[:], gvr)
	return nil
}

type validatorRegistrationWire struct {
	FeeRecipient string          `json:"fee_recipient"`
	GasLimit     json.RawMessage `json:"gas_limit"`
	Timestamp    json.RawMessage `json:"timestamp"`
	Pubkey       string          `json:"pubkey"`
}

func (r ValidatorRegistration) MarshalJSON() ([]byte, error) {
	return json.Marshal(validatorRegistrationWire{
		FeeRecipient: encodeHexField(r.FeeRecipient[:]),
		GasLimit:     encodeQuotedUint64(r.GasLimit),
		Timestamp:    encodeQuotedUint64(r.Timestamp),
		Pubkey:       encodeHexField(r.Pubkey[:]),
	})
}

func (r *ValidatorRegistration) UnmarshalJSON(data []byte) error {
	var w validatorRegistrationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.BadJSON, "malformed validator registration", err)
	}
	feeRecipient, err := decodeHexField("registration.fee_recipient", w.FeeRecipient, 20)
	if err != nil {
		return err
	}
	gasLimit, err := decodeQuotedUint64("registration.gas_limit", w.GasLimit)
	if err != nil {
		return err
	}
	timestamp, err := decodeQuotedUint64("registration.timestamp", w.Timestamp)
	if err != nil {
		return err
	}
	pubkey, err := decodeHexField("registration.pubkey", w.Pubkey, 48)
	if err != nil {
		return err
	}
	copy(r.FeeRecipient[:], feeRecipient)
	r.GasLimit = gasLimit
	r.Timestamp = timestamp
	copy(r.Pubkey[:], pubkey)
	return nil
}

type voluntaryExitWire struct {
	Epoch          json.RawMessage `json:"epoch"`
	ValidatorIndex json.RawMessage `json:"validator_index"`
}

func (v VoluntaryExit) MarshalJSON() ([]byte, error) {
	return json.Marshal(voluntaryExitWire{
		Epoch:          encodeQuotedUint64(v.Epoch),
		ValidatorIndex: encodeQuotedUint64(v.ValidatorIndex),
	})
}

func (v *VoluntaryExit) UnmarshalJSON(data []byte) error {
	var w voluntaryExitWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.BadJSON, "malformed voluntary exit", err)
	}
	epoch, err := decodeQuotedUint64("voluntary_exit.epoch", w.Epoch)
	if err != nil {
		return err
	}
	validatorIndex, err := decodeQuotedUint64("voluntary_exit.validator_index", w.ValidatorIndex)
	if err != nil {
		return err
	}
	v.Epoch = epoch
	v.ValidatorIndex = validatorIndex
	return nil
}
