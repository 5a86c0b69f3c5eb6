package ratpfs

const (
	INVALID         Op = 0
	MOUNT_CALL      Op = 1
	MOUNT_RETURN    Op = 2
	READDIR_CALL    Op = 3
	READDIR_RETURN  Op = 4
	STAT_CALL       Op = 5
	STAT_RETURN     Op = 6
	OPEN_CALL       Op = 7
	OPEN_RETURN     Op = 8
	READ_CALL       Op = 9
	READ_RETURN     Op = 10
	WRITE_CALL      Op = 11
	WRITE_RETURN    Op = 12
	CLOSE_CALL      Op = 13
	CLOSE_RETURN    Op = 14
	TRUNCATE_CALL   Op = 15
	TRUNCATE_RETURN Op = 16
)

const (
	NOT_FOUND Kind = 0
	FILE      Kind = 1
	DIR       Kind = 2
)

// open flags as the target encodes them
const (
	O_RDONLY uint32 = 0
	O_WRONLY uint32 = 1
	O_RDWR   uint32 = 2
	O_CREAT  uint32 = 0100
	O_TRUNC  uint32 = 01000
)
