package antenna

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	ms "github.com/mitchellh/mapstructure"
)

var ErrUnknownPattern = errors.New("antenna: unknown element pattern")

type PatternType int

const (
	IsotropicPattern PatternType = iota
	HornPattern
	PatchPattern
)

var PatternTypes = [...]string{
	"isotropic",
	"horn",
	"patch",
}

func (p PatternType) String() string {
	if int(p) < 0 || int(p) >= len(PatternTypes) {
		return "Unknown-PatternType"
	}
	return PatternTypes[p]
}

// Representation is the form in which fields of the pattern type are stored, the same as
// returned by the ElementPattern built for it.
func (p PatternType) Representation() Representation {
	if p == IsotropicPattern {
		return Magnitude
	}
	return RealPart
}

// ParsePatternType accepts the names in PatternTypes, case insensitive.
func ParsePatternType(name string) (PatternType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, v := range PatternTypes {
		if v == name {
			return PatternType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
}

func (p PatternType) MarshalText() ([]byte, error) {
	if int(p) < 0 || int(p) >= len(PatternTypes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPattern, int(p))
	}
	return []byte(p.String()), nil
}

func (p *PatternType) UnmarshalText(text []byte) error {
	v, err := ParsePatternType(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// PatternSetting selects an element pattern and carries its numeric parameters.
// Parameter names are case insensitive, always stored in capital letters:
//   horn  : Q
//   patch : W, L, H, ER (W or L of 0 designs a lambda/2 patch from ER and H)
type PatternSetting struct {
	Type  PatternType        `json:"type" mapstructure:"type"`
	Param map[string]float64 `json:"params,omitempty" mapstructure:"params"`
}

func NewPatternSetting(ptype PatternType) *PatternSetting {
	return &PatternSetting{Type: ptype}
}

func (s *PatternSetting) AddParam(name string, value float64) *PatternSetting {
	if s.Param == nil {
		s.Param = make(map[string]float64)
	}
	s.Param[strings.ToUpper(name)] = value
	return s
}

// Value returns the value of the parameter set for the pattern, 0 if absent.
func (s PatternSetting) Value(name string) float64 {
	if s.Param == nil {
		return 0
	}
	return s.Param[strings.ToUpper(name)]
}

func patternTypeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(PatternType(0)) || from.Kind() != reflect.String {
		return data, nil
	}
	return ParsePatternType(data.(string))
}

// DecodePatternSetting decodes a generic map (as read from a config file) into a PatternSetting.
func DecodePatternSetting(input map[string]interface{}) (PatternSetting, error) {
	var result PatternSetting
	// the hook error loses its sentinel inside mapstructure.Error
	if name, ok := input["type"].(string); ok {
		if _, err := ParsePatternType(name); err != nil {
			return result, err
		}
	}
	dec, err := ms.NewDecoder(&ms.DecoderConfig{
		DecodeHook:       patternTypeHook,
		WeaklyTypedInput: true,
		Result:           &result,
	})
	if err != nil {
		return result, err
	}
	if err := dec.Decode(input); err != nil {
		return result, fmt.Errorf("decode pattern setting: %w", err)
	}
	params := result.Param
	result.Param = nil
	for k, v := range params {
		result.AddParam(k, v)
	}
	return result, nil
}

// PatchGeometry returns the patch parameters of s, designing W and L when either is unset.
func (s PatternSetting) PatchGeometry(freqHz float64) (PatchGeometry, error) {
	g := PatchGeometry{W: s.Value("W"), L: s.Value("L"), H: s.Value("H"), Er: s.Value("ER")}
	if g.W > 0 && g.L > 0 {
		if g.H <= 0 || g.Er < 1 {
			return g, ErrInvalidSubstrate
		}
		return g, nil
	}
	return DesignPatch(g.Er, g.H, freqHz)
}

// NewPattern builds the ElementPattern selected by s for operation at freqHz.
func NewPattern(s PatternSetting, freqHz float64) (ElementPattern, error) {
	if freqHz <= 0 {
		return nil, ErrInvalidFrequency
	}
	switch s.Type {
	case IsotropicPattern:
		return Isotropic{}, nil
	case HornPattern:
		h := NewHorn()
		if q := s.Value("Q"); q > 0 {
			h.Q = q
		}
		return h, nil
	case PatchPattern:
		g, err := s.PatchGeometry(freqHz)
		if err != nil {
			return nil, err
		}
		return Patch{PatchGeometry: g, FreqHz: freqHz}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPattern, int(s.Type))
	}
}
