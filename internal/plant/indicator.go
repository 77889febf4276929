package plant

// Icon is the glyph shown on the hat display next to the status text.
type Icon int

const (
	IconBlank Icon = iota
	IconDot
	IconUp
	IconDown
	IconUpDown
	IconCheck
	IconX
)

func (i Icon) String() string {
	switch i {
	case IconDot:
		return "dot"
	case IconUp:
		return "up"
	case IconDown:
		return "down"
	case IconUpDown:
		return "up_down"
	case IconCheck:
		return "check"
	case IconX:
		return "x"
	default:
		return "blank"
	}
}

// Text is one of the fixed status strings the hat can show.
type Text int

const (
	TextBlank Text = iota
	TextClassic
	TextBrain
	TextCustom1
	TextCustom2
	TextManual
	TextCalibrate
	TextInfo
)

func (t Text) String() string {
	switch t {
	case TextClassic:
		return "CLASSIC"
	case TextBrain:
		return "BRAIN"
	case TextCustom1:
		return "CUSTOM1"
	case TextCustom2:
		return "CUSTOM2"
	case TextManual:
		return "MANUAL"
	case TextCalibrate:
		return "CALIBRATE"
	case TextInfo:
		return "INFO"
	default:
		return ""
	}
}
