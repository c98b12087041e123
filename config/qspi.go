package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/qspi"
	"go.viam.com/k3ddrss/utils"
)

// QSPIConfig locates a QSPI controller and its flash.
type QSPIConfig struct {
	Base     uint64 `json:"base"`
	RefClkHz uint32 `json:"ref_clk_hz"`
	// Port is the periph SPI port name of the flash, for example "SPI0.0".
	Port       string           `json:"port,omitempty"`
	Partitions []qspi.Partition `json:"partitions,omitempty"`
	// Attributes are the flash node properties, decoded into FlashAttributes.
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// FlashAttributes are the flash properties the calibration uses, named as in a device tree.
type FlashAttributes struct {
	MaxHz      uint32 `json:"spi-max-frequency"`
	PageSize   uint32 `json:"page-size"`
	BlockSize  uint32 `json:"block-size"`
	TSHSLNs    uint32 `json:"tshsl-ns"`
	TSD2DNs    uint32 `json:"tsd2d-ns"`
	TCHSHNs    uint32 `json:"tchsh-ns"`
	TSLCHNs    uint32 `json:"tslch-ns"`
	ReadDelay  int    `json:"read-delay"`
	PHYMode    bool   `json:"phy-mode"`
	PHYTXStart int    `json:"phy-tx-start"`
	PHYTXEnd   int    `json:"phy-tx-end"`
}

// DefaultFlashAttributes returns the values used for absent properties.
func DefaultFlashAttributes() FlashAttributes {
	return FlashAttributes{
		MaxHz:      qspi.DefaultMaxHz,
		PageSize:   256,
		BlockSize:  16,
		TSHSLNs:    200,
		TSD2DNs:    255,
		TCHSHNs:    20,
		TSLCHNs:    20,
		ReadDelay:  -1,
		PHYTXStart: qspi.DefaultPHYTXStart,
		PHYTXEnd:   qspi.DefaultPHYTXEnd,
	}
}

// Timing returns the device timing.
func (a FlashAttributes) Timing() qspi.Timing {
	return qspi.Timing{TSHSL: a.TSHSLNs, TSD2D: a.TSD2DNs, TCHSH: a.TCHSHNs, TSLCH: a.TSLCHNs}
}

// Validate checks the controller location.
func (q *QSPIConfig) Validate(path string) error {
	if q.Base == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "base")
	}
	if q.RefClkHz == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "ref_clk_hz")
	}
	return nil
}

// FlashAttributes decodes Attributes over the defaults. Unknown properties are logged and
// ignored.
func (q *QSPIConfig) FlashAttributes(logger logging.Logger) (FlashAttributes, error) {
	attrs := DefaultFlashAttributes()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &attrs,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return FlashAttributes{}, err
	}
	if v, ok := q.Attributes["phy-mode"]; ok {
		if _, isBool := v.(bool); !isBool {
			return FlashAttributes{}, errors.Wrap(utils.NewUnexpectedTypeError(false, v), "phy-mode")
		}
	}
	if q.Attributes != nil {
		if err := decoder.Decode(q.Attributes); err != nil {
			return FlashAttributes{}, err
		}
	}
	if len(md.Unused) > 0 {
		logger.Warnw("ignoring unknown flash attributes", "attributes", md.Unused)
	}
	if attrs.MaxHz == 0 {
		return FlashAttributes{}, errors.New("spi-max-frequency must be positive")
	}
	if attrs.ReadDelay > 15 {
		return FlashAttributes{}, utils.NewOutOfRangeError("read-delay", int64(attrs.ReadDelay), -1, 15)
	}
	if attrs.PHYTXStart < 0 || attrs.PHYTXStart > attrs.PHYTXEnd || attrs.PHYTXEnd > 127 {
		return FlashAttributes{}, errors.Errorf("phy-tx-start %d and phy-tx-end %d must satisfy 0 <= start <= end <= 127",
			attrs.PHYTXStart, attrs.PHYTXEnd)
	}
	return attrs, nil
}

// PatternStart returns the tuning pattern offset and whether the pattern partition exists. A
// missing partition is an error only in PHY mode.
func (q *QSPIConfig) PatternStart(attrs FlashAttributes) (uint32, bool, error) {
	off, err := qspi.FindPatternPartition(q.Partitions)
	if err == nil {
		return off, true, nil
	}
	if attrs.PHYMode {
		return 0, false, err
	}
	return 0, false, nil
}
