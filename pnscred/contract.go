package pnscred

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/segmentio/encoding/json"
)

// DecodeJSON decodes a flat JSON object of data contract properties into the platform's credential.
// It does not validate the credential.
func DecodeJSON(platform string, data []byte) (Credential, error) {
	cred, err := New(platform)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(data, cred); err != nil {
		return nil, fmt.Errorf("%s credential json malformed: %w", platform, err)
	}

	return cred, nil
}

// DecodeXML decodes the data contract XML form into the platform's credential.
// It does not validate the credential.
func DecodeXML(platform string, data []byte) (Credential, error) {
	cred, err := New(platform)
	if err != nil {
		return nil, err
	}

	if err = xml.Unmarshal(data, cred); err != nil {
		return nil, fmt.Errorf("%s credential xml malformed: %w", platform, err)
	}

	return cred, nil
}

// xmlContract is the wire shape shared by every credential kind.
type xmlContract struct {
	XMLName    xml.Name
	Properties []Property `xml:"Properties>Property"`
}

func (c *GcmCredential) setProperty(name, value string) {
	switch {
	case name == PropGoogleAPIKey && c.googleAPIKey == nil:
		c.SetGoogleAPIKey(value)
	case name == PropGcmEndpoint && c.gcmEndpoint == nil:
		c.SetGcmEndpoint(value)
	default:
		c.extra = append(c.extra, Property{Name: name, Value: value})
	}
}

func (c *GcmCredential) reset() {
	c.googleAPIKey = nil
	c.gcmEndpoint = nil
	c.extra = nil
}

// MarshalJSON writes properties in data contract order.
func (c *GcmCredential) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, prop := range c.Properties() {
		if i > 0 {
			buf.WriteByte(',')
		}

		name, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps unknown property names so that Validate can reject them. Null values are skipped.
func (c *GcmCredential) UnmarshalJSON(data []byte) error {
	props := map[string]*string{}
	if err := json.Unmarshal(data, &props); err != nil {
		return err
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}

	// known names first, then the rest sorted so Properties is deterministic
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := propertyRank(names[i]), propertyRank(names[j])
		if ri != rj {
			return ri < rj
		}

		return names[i] < names[j]
	})

	c.reset()
	for _, name := range names {
		if props[name] == nil {
			continue
		}

		c.setProperty(name, *props[name])
	}

	return nil
}

func (c *GcmCredential) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Space: Namespace, Local: DataContractGcm}
	start.Attr = nil

	return e.EncodeElement(struct {
		Properties []Property `xml:"Properties>Property"`
	}{
		Properties: c.Properties(),
	}, start)
}

// UnmarshalXML keeps duplicated and unknown properties so that Validate can reject them.
func (c *GcmCredential) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if start.Name.Local != DataContractGcm {
		return fmt.Errorf("expected element %s, got %s", DataContractGcm, start.Name.Local)
	}

	if start.Name.Space != "" && start.Name.Space != Namespace {
		return fmt.Errorf("unexpected namespace %s on %s", start.Name.Space, DataContractGcm)
	}

	var contract xmlContract
	if err := d.DecodeElement(&contract, &start); err != nil {
		return err
	}

	c.reset()
	for _, prop := range contract.Properties {
		c.setProperty(prop.Name, prop.Value)
	}

	return nil
}

func propertyRank(name string) int {
	switch name {
	case PropGoogleAPIKey:
		return 0
	case PropGcmEndpoint:
		return 1
	default:
		return 2
	}
}
