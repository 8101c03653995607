package synth

// Chip register addresses.
const (
	regLFO       = 0x22
	regKeyOnOff  = 0x28
	regMode      = 0x29
	regDTML      = 0x30
	regTL        = 0x40
	regKSAR      = 0x50
	regAMDR      = 0x60
	regSR        = 0x70
	regSLRR      = 0x80
	regSSGEG     = 0x90
	regFNumLow   = 0xA0
	regFNumBlock = 0xA4
	regFBAL      = 0xB0
	regPanAMSPMS = 0xB4
)

// Register values.
const (
	modeYM2608    = 0x80 // enables the six-channel OPNA mode
	centerPanning = 0xC0 // left and right outputs enabled
	slotFlags     = 0xF0 // key-on bits for all four operator slots
	highChFlag    = 0x04 // selects the high bank in the key-on register
)

// Channel layout.
const (
	// NumChannels is the number of FM channels a session can key.
	NumChannels = 6

	channelsPerBank = 3
	numOperators    = 4
)

// operatorOffsets maps operator index to its register slot offset.
// The chip orders slots 1, 3, 2, 4.
var operatorOffsets = [numOperators]uint8{0x00, 0x08, 0x04, 0x0C}

// Field masks for the register codec.
const (
	mask1Bit  = 0x01
	mask2Bits = 0x03
	mask3Bits = 0x07
	mask4Bits = 0x0F
	mask5Bits = 0x1F
	mask6Bits = 0x3F
	maskByte  = 0xFF
)

// Session buffer limits.
const (
	minBufferCapacity = 64
	maxOutputRate     = 1 << 20
)
