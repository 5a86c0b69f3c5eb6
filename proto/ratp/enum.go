package ratp

const (
	CLOSED       State = 0
	LISTEN       State = 1
	SYN_SENT     State = 2
	SYN_RECEIVED State = 3
	ESTABLISHED  State = 4
	FIN_WAIT     State = 5
	LAST_ACK     State = 6
	CLOSING      State = 7
	TIME_WAIT    State = 8
)

// maximum data length announced in SYN segments
const mdl uint8 = 255
