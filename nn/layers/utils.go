package layers

import (
	"encoding/binary"
	"io"
)

// growVector returns v extended (or truncated) to length n; new slots are
// zero-valued. Used by Resize/Init to grow buffers while preserving
// existing values at surviving positions.
func growVector(v []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, v)
	return out
}

func growBoolVector(v []bool, n int, fill bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = fill
	}
	copy(out, v)
	return out
}

// growMatrix returns m reshaped to rows x cols, preserving values at
// surviving (row, col) positions and zeroing the rest.
func growMatrix(m [][]float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		if i < len(m) {
			copy(out[i], m[i])
		}
	}
	return out
}

func growBoolMatrix(m [][]bool, rows, cols int, fill bool) [][]bool {
	out := make([][]bool, rows)
	for i := range out {
		out[i] = make([]bool, cols)
		for j := range out[i] {
			out[i][j] = fill
		}
		if i < len(m) {
			copy(out[i], m[i])
		}
	}
	return out
}

// resizeRows changes the row count of m to rows, keeping each surviving
// row's own column count unchanged (used when a layer's neuron count,
// i.e. row count, is mutated independently of its input count).
func resizeRows(m [][]float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		if i < len(m) {
			out[i] = m[i]
		} else {
			out[i] = make([]float64, cols)
		}
	}
	return out
}

func resizeBoolRows(m [][]bool, rows, cols int) [][]bool {
	out := make([][]bool, rows)
	for i := range out {
		if i < len(m) {
			out[i] = m[i]
		} else {
			out[i] = make([]bool, cols)
			for j := range out[i] {
				out[i][j] = true
			}
		}
	}
	return out
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = append([]float64(nil), m[i]...)
	}
	return out
}

func copyBoolMatrix(m [][]bool) [][]bool {
	out := make([][]bool, len(m))
	for i := range m {
		out[i] = append([]bool(nil), m[i]...)
	}
	return out
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
