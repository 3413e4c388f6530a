package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-ltc-raytracer/pkg/core"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
)

// ltcMagic opens every binary table file
var ltcMagic = [4]byte{'L', 'T', 'C', '1'}

// maxTableTexels bounds allocations driven by a file header
const maxTableTexels = 4096 * 4096

// LoadLTCTable reads one row table of the LTC matrix. Binary files start
// with "LTC1", then little-endian uint32 width and height, then
// width*height*3 float32 values, row-major with rows indexed by roughness.
// Anything else is decoded as an image whose texels map to
// pixel*scale + bias; scale and bias are ignored for binary tables.
//
// Image tables are quantized to the 8 or 16 bits per channel of their file,
// so a matrix entry is only known to within scale/255 (or scale/65535) and
// the fitted tables' large near-grazing entries clip at scale + bias. The
// float32 binary format has neither limit and is the recommended one; the
// tables command converts image tables with WriteLTCTable.
func LoadLTCTable(path string, scale, bias float64) (*ltc.GridTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ltc table: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	head, err := reader.Peek(len(ltcMagic))
	if err == nil && bytes.Equal(head, ltcMagic[:]) {
		table, err := ReadLTCTable(reader)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return table, nil
	}

	img, err := LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is neither a binary table nor an image: %w", ltc.ErrInvalidTable, path, err)
	}
	data := make([]core.Vec3, len(img.Pixels))
	for i, p := range img.Pixels {
		data[i] = core.NewVec3(p.X*scale+bias, p.Y*scale+bias, p.Z*scale+bias)
	}
	// Image row 0 is the top; table row 0 is roughness 0
	flipRows(data, img.Width, img.Height)
	return ltc.NewGridTable(img.Width, img.Height, data)
}

// ReadLTCTable decodes a binary table from r
func ReadLTCTable(r io.Reader) (*ltc.GridTable, error) {
	var header struct {
		Magic         [4]byte
		Width, Height uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ltc.ErrInvalidTable, err)
	}
	if header.Magic != ltcMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ltc.ErrInvalidTable, header.Magic[:])
	}
	texels := uint64(header.Width) * uint64(header.Height)
	if texels == 0 || texels > maxTableTexels {
		return nil, fmt.Errorf("%w: unsupported size %dx%d", ltc.ErrInvalidTable, header.Width, header.Height)
	}

	raw := make([]float32, texels*3)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated data for %dx%d table", ltc.ErrInvalidTable, header.Width, header.Height)
		}
		return nil, fmt.Errorf("%w: %w", ltc.ErrInvalidTable, err)
	}

	data := make([]core.Vec3, texels)
	for i := range data {
		v := core.NewVec3(float64(raw[3*i]), float64(raw[3*i+1]), float64(raw[3*i+2]))
		if !v.IsFinite() {
			return nil, fmt.Errorf("%w: non-finite value at texel %d", ltc.ErrInvalidTable, i)
		}
		data[i] = v
	}
	return ltc.NewGridTable(int(header.Width), int(header.Height), data)
}

// WriteLTCTable writes a table in the binary format read by LoadLTCTable
func WriteLTCTable(path string, table *ltc.GridTable) error {
	var buf bytes.Buffer
	if err := EncodeLTCTable(&buf, table); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write ltc table: %w", err)
	}
	return nil
}

// EncodeLTCTable serialises a table to w
func EncodeLTCTable(w io.Writer, table *ltc.GridTable) error {
	width, height := table.Width(), table.Height()
	raw := make([]float32, 0, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := table.At(x, y)
			raw = append(raw, float32(v.X), float32(v.Y), float32(v.Z))
		}
	}

	header := struct {
		Magic         [4]byte
		Width, Height uint32
	}{ltcMagic, uint32(width), uint32(height)}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing ltc header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("writing ltc data: %w", err)
	}
	return nil
}

// LoadLTCTables loads the three row tables of the LTC matrix
func LoadLTCTables(paths [3]string, scale, bias float64) ([3]*ltc.GridTable, error) {
	var tables [3]*ltc.GridTable
	for i, path := range paths {
		if path == "" {
			return tables, fmt.Errorf("%w: row %d has no path", ltc.ErrMissingTable, i+1)
		}
		table, err := LoadLTCTable(path, scale, bias)
		if err != nil {
			return tables, fmt.Errorf("row %d: %w", i+1, err)
		}
		tables[i] = table
	}
	return tables, nil
}

func flipRows(data []core.Vec3, width, height int) {
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		for x := 0; x < width; x++ {
			data[top*width+x], data[bottom*width+x] = data[bottom*width+x], data[top*width+x]
		}
	}
}
