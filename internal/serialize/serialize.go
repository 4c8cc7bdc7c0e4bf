// Package serialize implements the flat binary (de)serialization formats
// spec.md §6/§11 names for Shower and PhotonCount: a fixed-field Shower
// record and a header-plus-per-pixel-record PhotonCount dump. Grounded on
// the teacher's internal/lidar/network wire-format code, which reaches for
// encoding/binary.LittleEndian over raw byte layouts rather than a
// self-describing format; the same package's Write/Read helpers extend that
// choice to an io.Writer/io.Reader surface.
package serialize

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/photoncount"
	"github.com/horizon-array/airshower/internal/shower"
)

// showerSpeed is assumed on decode; spec.md §6 serializes a unit direction
// v̂, not a velocity, so the speed the Shower's Ray carries is a domain
// constant rather than recovered data.
const showerSpeed = 2.99792458e10

// EncodeShower writes t0, x0[3], v̂[3], E, Xmax, Nmax as little-endian
// float64s, per spec.md §6 "Shower I/O".
func EncodeShower(w io.Writer, s shower.Shower) error {
	fields := []float64{
		s.StartTime,
		s.StartPosition.X, s.StartPosition.Y, s.StartPosition.Z,
	}
	axis := s.Axis()
	fields = append(fields, axis.X, axis.Y, axis.Z)
	fields = append(fields, s.Energy, s.Profile.Xmax(), s.Profile.Nmax())

	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("serialize: encode shower: %w", err)
		}
	}
	return nil
}

// DecodeShower reads a record written by EncodeShower, reconstructing a
// GaisserHillasProfile from the stored Xmax/Nmax.
func DecodeShower(r io.Reader) (shower.Shower, error) {
	var fields [10]float64
	for i := range fields {
		if err := binary.Read(r, binary.LittleEndian, &fields[i]); err != nil {
			return shower.Shower{}, fmt.Errorf("serialize: decode shower: %w", err)
		}
	}

	t0 := fields[0]
	x0 := geom.Vector3{X: fields[1], Y: fields[2], Z: fields[3]}
	axis := geom.Vector3{X: fields[4], Y: fields[5], Z: fields[6]}
	energy, xmax, nmax := fields[7], fields[8], fields[9]

	profile := shower.GaisserHillasProfile{NmaxVal: nmax, XmaxVal: xmax}
	s, err := shower.New(t0, x0, axis, showerSpeed, energy, profile)
	if err != nil {
		return shower.Shower{}, fmt.Errorf("serialize: decode shower: %w", err)
	}
	return s, nil
}

// cubeHeader is (n_pmt_across, start_time, bin_width, angular_size), per
// spec.md §6 "PhotonCount persistence".
type cubeHeader struct {
	NAcross        int32
	StartTime      float64
	BinWidth       float64
	PMTAngularSize float64
}

// EncodeCube writes cube's header followed by one record per valid pixel:
// (x, y, series_length, counts...), per spec.md §6.
func EncodeCube(w io.Writer, cube *photoncount.Cube) error {
	header := cubeHeader{
		NAcross:        int32(cube.NAcross()),
		StartTime:      cube.StartTime(),
		BinWidth:       cube.BinWidth(),
		PMTAngularSize: cube.AngularSize(),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("serialize: encode cube header: %w", err)
	}

	for it := cube.Iterator(); it.Next(); {
		bins := cube.Bins(it.X(), it.Y())
		record := struct {
			X, Y, Len int32
		}{int32(it.X()), int32(it.Y()), int32(len(bins))}
		if err := binary.Write(w, binary.LittleEndian, record); err != nil {
			return fmt.Errorf("serialize: encode cube pixel: %w", err)
		}
		if len(bins) == 0 {
			continue
		}
		if err := binary.Write(w, binary.LittleEndian, bins); err != nil {
			return fmt.Errorf("serialize: encode cube counts: %w", err)
		}
	}
	return nil
}

// DecodeCube reads a dump written by EncodeCube. pmtLinearSize and toWorld
// are supplied by the caller because the dump format omits them (they are
// informational geometry, not per-run state, per spec.md §6).
func DecodeCube(r io.Reader, pmtLinearSize float64, toWorld geom.Rotation) (*photoncount.Cube, error) {
	var header cubeHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("serialize: decode cube header: %w", err)
	}

	cube := photoncount.New(photoncount.Params{
		NAcross:         int(header.NAcross),
		StartTime:       header.StartTime,
		BinWidth:        header.BinWidth,
		PMTAngularSize:  header.PMTAngularSize,
		PMTLinearSize:   pmtLinearSize,
		DetectorToWorld: toWorld,
	})

	for {
		var record struct {
			X, Y, Len int32
		}
		if err := binary.Read(r, binary.LittleEndian, &record); err != nil {
			if err == io.EOF {
				return cube, nil
			}
			return nil, fmt.Errorf("serialize: decode cube pixel: %w", err)
		}
		if record.Len == 0 {
			continue
		}
		counts := make([]int64, record.Len)
		if err := binary.Read(r, binary.LittleEndian, counts); err != nil {
			return nil, fmt.Errorf("serialize: decode cube counts: %w", err)
		}
		for bin, v := range counts {
			cube.SetBin(int(record.X), int(record.Y), bin, v)
		}
	}
}
