package fulfillment

import (
	"bytes"
	"encoding/json"
	"fmt"

	"rewardcore/internal/domain/codec"
)

// Codec registries for every persisted family. Hosts register their own
// kinds in an init block.
var (
	ItemKinds      = codec.NewRegistry[Item]("item")
	LocationKinds  = codec.NewRegistry[Location]("location")
	PlacementKinds = codec.NewRegistry[Placement]("placement")
	TagKinds       = codec.NewRegistry[Tag]("tag")
	ModuleKinds    = codec.NewRegistry[Module]("module")
	TestKinds      = codec.NewRegistry[BoolTest]("test")
)

func init() {
	ItemKinds.MustRegister(kindResourceItem, func() Item { return &ResourceItem{} })
	ItemKinds.MustRegister(kindFlagItem, func() Item { return &FlagItem{} })

	LocationKinds.MustRegister(kindSceneLocation, func() Location { return &SceneLocation{} })
	LocationKinds.MustRegister(kindAutoLocation, func() Location { return &AutoLocation{} })

	PlacementKinds.MustRegister(kindMutablePlacement, func() Placement { return &MutablePlacement{} })
	PlacementKinds.MustRegister(kindDualPlacement, func() Placement { return &DualPlacement{} })

	TagKinds.MustRegister(kindOriginalContainerTag, func() Tag { return &OriginalContainerTag{} })
	TagKinds.MustRegister(kindUnsupportedContainerTag, func() Tag { return &UnsupportedContainerTag{} })
	TagKinds.MustRegister(kindCapabilityTag, func() Tag { return &CapabilityTag{} })
	TagKinds.MustRegister(kindObtainFlagTag, func() Tag { return &ObtainFlagTag{} })

	ModuleKinds.MustRegister(kindContainerCatalogModule, func() Module { return &ContainerCatalogModule{} })
	ModuleKinds.MustRegister(kindStartingResourcesModule, func() Module { return &StartingResourcesModule{} })
	ModuleKinds.MustRegister(kindEventLogModule, func() Module { return &EventLogModule{} })

	TestKinds.MustRegister(kindFlagTest, func() BoolTest { return &FlagTest{} })
	TestKinds.MustRegister(kindResourceTest, func() BoolTest { return &ResourceAtLeastTest{} })
}

// EncodePlacement and DecodePlacement wrap a single placement envelope.
func EncodePlacement(pl Placement) (json.RawMessage, error) { return PlacementKinds.Encode(pl) }

func DecodePlacement(raw json.RawMessage) (Placement, error) {
	pl, err := PlacementKinds.Decode(raw)
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return nil, fmt.Errorf("%w: empty placement document", ErrInvalidPlacement)
	}
	return pl, nil
}

// EncodeProfile writes {"placements": {...}, "modules": [...]} with
// placements in insertion order. The output is indented and deterministic.
func EncodeProfile(p *Profile) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"placements":{`)
	for i, name := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		raw, err := PlacementKinds.Encode(p.placements[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteString(`},"modules":`)
	modules, err := ModuleKinds.EncodeList(p.modules)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(modules)
	if err != nil {
		return nil, err
	}
	buf.Write(raw)
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent profile: %w", err)
	}
	return out.Bytes(), nil
}

type profileDocument struct {
	Placements json.RawMessage   `json:"placements"`
	Modules    []json.RawMessage `json:"modules"`
}

// DecodeProfile reads a document written by EncodeProfile into a new,
// unattached profile. Placement order follows the document.
func DecodeProfile(raw []byte) (*Profile, error) {
	var doc profileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p := NewProfile()

	modules, err := ModuleKinds.DecodeList(doc.Modules)
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.modules = modules

	if len(bytes.TrimSpace(doc.Placements)) == 0 || bytes.Equal(bytes.TrimSpace(doc.Placements), []byte("null")) {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(doc.Placements))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("decode profile: placements must be an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		name, _ := tok.(string)
		var entry json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decode profile placement %q: %w", name, err)
		}
		pl, err := DecodePlacement(entry)
		if err != nil {
			return nil, fmt.Errorf("decode profile placement %q: %w", name, err)
		}
		if pl.PlacementName() != name {
			return nil, fmt.Errorf("%w: key %q holds placement %q", ErrInvalidPlacement, name, pl.PlacementName())
		}
		if _, err := p.AddPlacement(pl, Throw); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	return p, nil
}
