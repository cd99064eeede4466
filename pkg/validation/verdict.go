package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind classifies a Verdict.
type Kind int

const (
	KindOK Kind = iota
	KindNoData
	KindMissing
	KindInvalid
	KindNetworkFailure
)

var kindNames = [...]string{
	KindOK:             "ok",
	KindNoData:         "no_data",
	KindMissing:        "missing",
	KindInvalid:        "invalid",
	KindNetworkFailure: "network_failure",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Kinds lists every kind, in declaration order.
func Kinds() []Kind {
	return []Kind{KindOK, KindNoData, KindMissing, KindInvalid, KindNetworkFailure}
}

// MandatoryFieldMessage is the rendering of a Missing verdict.
const MandatoryFieldMessage = "FAILED. No Data provided. Mandatory field."

// Verdict is the outcome of validating one cell.
type Verdict struct {
	Kind Kind

	// Reason explains an Invalid verdict or labels a NoData verdict.
	Reason string

	// StatusCode is the last HTTP status seen, when one was received.
	StatusCode int

	// Err is the transport error behind a NetworkFailure without status.
	Err error

	// Items holds per-value verdicts for cells carrying several values.
	Items []Item
}

// Item is the verdict of one value within a multi-value cell.
type Item struct {
	Value   string
	Verdict Verdict
}

// OK returns a passing verdict.
func OK() Verdict {
	return Verdict{Kind: KindOK}
}

// NoData returns a verdict for an absent optional value.
func NoData(label string) Verdict {
	return Verdict{Kind: KindNoData, Reason: label}
}

// Missing returns a verdict for an absent mandatory value.
func Missing() Verdict {
	return Verdict{Kind: KindMissing}
}

// Invalid returns a verdict for a value that failed a check.
func Invalid(reason string) Verdict {
	return Verdict{Kind: KindInvalid, Reason: reason}
}

// Rejected returns an Invalid verdict carrying the status the service
// answered with.
func Rejected(statusCode int) Verdict {
	return Verdict{Kind: KindInvalid, StatusCode: statusCode}
}

// Unreachable returns a NetworkFailure verdict for a non-200 status.
func Unreachable(statusCode int) Verdict {
	return Verdict{Kind: KindNetworkFailure, StatusCode: statusCode}
}

// TransportFailure returns a NetworkFailure verdict for a request that got
// no response.
func TransportFailure(err error) Verdict {
	return Verdict{Kind: KindNetworkFailure, Err: err}
}

// Failed reports whether the verdict marks its row as failed.
func (v Verdict) Failed() bool {
	switch v.Kind {
	case KindMissing, KindInvalid, KindNetworkFailure:
		return true
	}
	return false
}

// String renders the verdict for the annotated output table.
func (v Verdict) String() string {
	if len(v.Items) > 0 {
		return v.itemsString()
	}

	switch v.Kind {
	case KindOK:
		return "Ok"
	case KindNoData:
		if v.Reason != "" {
			return v.Reason
		}
		return "No data"
	case KindMissing:
		return MandatoryFieldMessage
	case KindInvalid:
		if v.Reason != "" {
			return "FAILED: " + v.Reason
		}
		if v.StatusCode != 0 {
			return fmt.Sprintf("FAILED - Status code %d", v.StatusCode)
		}
		return "FAILED"
	case KindNetworkFailure:
		if v.StatusCode != 0 {
			return fmt.Sprintf("FAILED - Status code %d", v.StatusCode)
		}
		if v.Err != nil {
			return "Error " + v.Err.Error()
		}
		return "Error"
	}
	return v.Kind.String()
}

// itemsString renders items as a JSON object keyed by value, in cell order.
func (v Verdict) itemsString() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range v.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(item.Value)
		val, _ := json.Marshal(item.Verdict.String())
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.String()
}

type verdictJSON struct {
	Kind       Kind       `json:"kind"`
	Message    string     `json:"message"`
	StatusCode int        `json:"status_code,omitempty"`
	Error      string     `json:"error,omitempty"`
	Items      []itemJSON `json:"items,omitempty"`
}

type itemJSON struct {
	Value   string  `json:"value"`
	Verdict Verdict `json:"verdict"`
}

// MarshalJSON implements json.Marshaler.
func (v Verdict) MarshalJSON() ([]byte, error) {
	out := verdictJSON{
		Kind:       v.Kind,
		Message:    v.String(),
		StatusCode: v.StatusCode,
	}
	if v.Err != nil {
		out.Error = v.Err.Error()
	}
	for _, item := range v.Items {
		out.Items = append(out.Items, itemJSON{Value: item.Value, Verdict: item.Verdict})
	}
	return json.Marshal(out)
}
