package controller

// Input carries the per-cycle signals of the cache control port. CSb and
// WEb follow the hardware polarity: CSb low (false) presents a request, WEb
// low (false) makes it a write.
type Input struct {
	Rst   bool
	Flush bool
	CSb   bool
	WEb   bool
	WMask uint64
	Addr  uint64
	DIn   uint64
}

// Output carries the per-cycle outputs of the cache control port. DOut is
// valid only in a cycle where Stall is low and a request completed.
type Output struct {
	Stall bool
	DOut  uint64
}

// IdleInput returns the input of a cycle with no request presented.
func IdleInput() Input {
	return Input{CSb: true, WEb: true}
}

// TagEntry is one way's slot in a tag-array row.
type TagEntry struct {
	Valid bool
	Dirty bool
	Tag   uint64
}

// tagRow is one row of the tag array: one entry per way.
type tagRow []TagEntry

// dataRow is one row of the data array: one line of words per way.
type dataRow [][]uint64

func cloneTagRow(r tagRow) tagRow {
	out := make(tagRow, len(r))
	copy(out, r)

	return out
}

func cloneDataRow(r dataRow) dataRow {
	out := make(dataRow, len(r))
	for i, line := range r {
		out[i] = make([]uint64, len(line))
		copy(out[i], line)
	}

	return out
}

// mergeWord overlays din onto old under the byte write mask.
func mergeWord(old, din, wmask uint64, numBytes int) uint64 {
	word := old
	for b := 0; b < numBytes; b++ {
		if wmask&(1<<uint(b)) != 0 {
			byteMask := uint64(0xff) << uint(8*b)
			word = word&^byteMask | din&byteMask
		}
	}

	return word
}
