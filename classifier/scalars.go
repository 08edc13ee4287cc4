package classifier

import (
	"encoding/binary"
	"io"
)

func writeScalars(w io.Writer, values ...float64) error {
	return binary.Write(w, binary.LittleEndian, values)
}

func readScalars(r io.Reader, dst ...*float64) error {
	buf := make([]float64, len(dst))
	if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
		return err
	}
	for i, d := range dst {
		*d = buf[i]
	}
	return nil
}
