package ratp

const (
	SO  ControlFlag = 0x01 // 00000001
	EOR ControlFlag = 0x02 // 00000010
	AN  ControlFlag = 0x04 // 00000100
	SN  ControlFlag = 0x08 // 00001000
	RST ControlFlag = 0x10 // 00010000
	FIN ControlFlag = 0x20 // 00100000
	ACK ControlFlag = 0x40 // 01000000
	SYN ControlFlag = 0x80 // 10000000
)

const (
	Synch          uint8 = 0x01
	HeaderLength   int   = 4
	ChecksumLength int   = 2
	MaxDataLength  int   = 255
)
