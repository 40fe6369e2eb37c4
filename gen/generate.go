package gen

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/nado-dev/nado/conf"
)

// TestCase is one generated input instance. Tag is sufficient to
// regenerate the exact bytes: deterministic cases carry their
// phase ordinal ("edge:3"), random cases their derived seed
// ("seed:12345").
type TestCase struct {
	Index int
	Input []byte
	Tag   string
}

// Generate produces the full ordered case sequence for a shape:
// boundary cases first, then partition cases, then seeded random
// samples filling the remaining budget. Two calls with the same
// arguments produce identical sequences. The pbt knobs are
// assumed validated by conf.Validate.
func Generate(shape *Shape, cases int, seed uint64, pbt conf.Pbt) []TestCase {
	if cases == 0 {
		return nil
	}

	col := newCollector(shape)

	if pbt.Enabled {
		edgeBudget := int(math.Round(float64(cases) * pbt.EdgeCaseRatio))
		partitionBudget := int(math.Round(float64(cases) * pbt.PartitionRatio))

		col.phase = "edge"
		col.budget = minInt(edgeBudget, cases)
		edgePhase(shape, col, pbt.MaxCartesianCases)

		col.phase = "partition"
		col.budget = minInt(len(col.out)+partitionBudget, cases)
		partitionPhase(shape, col)
	}

	out := col.out
	for i := len(out); i < cases; i++ {
		caseSeed := splitmix64(seed + uint64(i))
		out = append(out, TestCase{
			Input: renderCase(shape, randomRow(shape, caseSeed)),
			Tag:   fmt.Sprintf("seed:%d", caseSeed),
		})
	}

	for i := range out {
		out[i].Index = i
	}
	return out
}

// CaseFromSeed regenerates the random case identified by a
// "seed:N" tag, for counterexample reproduction.
func CaseFromSeed(shape *Shape, caseSeed uint64) TestCase {
	return TestCase{
		Input: renderCase(shape, randomRow(shape, caseSeed)),
		Tag:   fmt.Sprintf("seed:%d", caseSeed),
	}
}

// genValue is one dimension's value inside a case under
// construction. Dependent vectors hold only their fill value
// until the referenced count is known.
type genValue struct {
	n    int64
	s    string
	vec  []int64
	fill int64
}

type collector struct {
	shape  *Shape
	seen   map[string]struct{}
	out    []TestCase
	budget int
	phase  string
}

func newCollector(shape *Shape) *collector {
	return &collector{shape: shape, seen: map[string]struct{}{}}
}

func (c *collector) full() bool {
	return len(c.out) >= c.budget
}

// push renders a row, deduplicates against everything collected
// so far, and appends a tagged case while the budget allows.
func (c *collector) push(row []genValue) {
	if c.full() {
		return
	}

	input := renderCase(c.shape, row)
	key := string(input)
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.out = append(c.out, TestCase{
		Input: input,
		Tag:   fmt.Sprintf("%s:%d", c.phase, len(c.out)),
	})
}

// edgePhase seeds deterministic boundary cases: all-mid,
// all-low, all-high, the two alternating rows, single-dimension
// sweeps, and finally the full cartesian product of edge values
// when it is small enough.
func edgePhase(shape *Shape, col *collector, maxCartesian int) {
	dims := shape.Dims()
	if col.full() || len(dims) == 0 {
		return
	}

	variants := make([][]genValue, len(dims))
	mids := make([]genValue, len(dims))
	lows := make([]genValue, len(dims))
	highs := make([]genValue, len(dims))
	altLowHigh := make([]genValue, len(dims))
	altHighLow := make([]genValue, len(dims))
	for i, dim := range dims {
		variants[i] = edgeVariants(dim)
		mids[i] = midVariant(dim)
		lows[i] = variants[i][0]
		highs[i] = variants[i][len(variants[i])-1]
		if i%2 == 0 {
			altLowHigh[i] = lows[i]
			altHighLow[i] = highs[i]
		} else {
			altLowHigh[i] = highs[i]
			altHighLow[i] = lows[i]
		}
	}

	col.push(mids)
	col.push(lows)
	col.push(highs)
	col.push(altLowHigh)
	col.push(altHighLow)

	for idx := range dims {
		for _, v := range variants[idx] {
			row := make([]genValue, len(mids))
			copy(row, mids)
			row[idx] = v
			col.push(row)
			if col.full() {
				return
			}
		}
	}

	total := 1
	for _, set := range variants {
		total = saturatingMul(total, len(set))
	}
	if total == 0 || total > maxCartesian {
		return
	}

	var stack []genValue
	cartesianCollect(variants, 0, stack, col)
}

func cartesianCollect(variants [][]genValue, depth int, stack []genValue, col *collector) {
	if col.full() {
		return
	}
	if depth == len(variants) {
		row := make([]genValue, len(stack))
		copy(row, stack)
		col.push(row)
		return
	}
	for _, v := range variants[depth] {
		if col.full() {
			return
		}
		cartesianCollect(variants, depth+1, append(stack, v), col)
	}
}

// partitionPhase walks qualitatively distinct regions of each
// dimension with a rotating cursor so that combinations differ
// across rows.
func partitionPhase(shape *Shape, col *collector) {
	dims := shape.Dims()
	if col.full() || len(dims) == 0 {
		return
	}

	points := make([][]genValue, len(dims))
	for i, dim := range dims {
		points[i] = partitionVariants(dim)
	}

	for cursor := 0; !col.full(); cursor++ {
		row := make([]genValue, len(dims))
		for idx, pts := range points {
			row[idx] = pts[(cursor+idx)%len(pts)]
		}
		col.push(row)

		if cursor > col.budget*4 {
			break
		}
	}
}

// randomRow draws one case's values from a PCG stream seeded by
// the case seed, dimension by dimension in declaration order.
// Dependent vector lengths come from the already-drawn count, so
// the length invariant holds by construction.
func randomRow(shape *Shape, caseSeed uint64) []genValue {
	rng := rand.New(rand.NewPCG(caseSeed, caseSeed^0x9E3779B97F4A7C15))
	dims := shape.Dims()
	row := make([]genValue, len(dims))
	for i, dim := range dims {
		switch dim.Kind {
		case KindInteger:
			row[i] = genValue{n: randInt64(rng, dim.Min, dim.Max)}
		case KindString:
			length := int(randInt64(rng, int64(dim.MinLen), int64(dim.MaxLen)))
			runes := make([]rune, length)
			for j := range runes {
				runes[j] = dim.Alphabet[rng.IntN(len(dim.Alphabet))]
			}
			row[i] = genValue{s: string(runes)}
		case KindVector:
			var length int
			if dim.LenRef >= 0 {
				length = int(row[dim.LenRef].n)
			} else {
				length = int(randInt64(rng, int64(dim.MinLen), int64(dim.MaxLen)))
			}
			vec := make([]int64, length)
			for j := range vec {
				vec[j] = randInt64(rng, dim.Min, dim.Max)
			}
			row[i] = genValue{vec: vec}
		}
	}
	return row
}

// renderCase turns a row into input bytes. Integers share a
// space-separated line; strings and vectors each take their own
// line. Dependent vector lengths are resolved here.
func renderCase(shape *Shape, row []genValue) []byte {
	var b strings.Builder
	var line []string
	flush := func() {
		if line != nil {
			b.WriteString(strings.Join(line, " "))
			b.WriteByte('\n')
			line = nil
		}
	}

	for i, dim := range shape.Dims() {
		switch dim.Kind {
		case KindInteger:
			line = append(line, strconv.FormatInt(row[i].n, 10))
		case KindString:
			flush()
			b.WriteString(row[i].s)
			b.WriteByte('\n')
		case KindVector:
			flush()
			vec := row[i].vec
			if dim.LenRef >= 0 {
				length := int(row[dim.LenRef].n)
				if len(vec) != length {
					vec = make([]int64, length)
					for j := range vec {
						vec[j] = row[i].fill
					}
				}
			}
			toks := make([]string, len(vec))
			for j, v := range vec {
				toks[j] = strconv.FormatInt(v, 10)
			}
			b.WriteString(strings.Join(toks, " "))
			b.WriteByte('\n')
		}
	}
	flush()
	return []byte(b.String())
}

func edgeVariants(dim Dim) []genValue {
	switch dim.Kind {
	case KindInteger:
		values := edgeValues(dim.Min, dim.Max)
		out := make([]genValue, len(values))
		for i, v := range values {
			out[i] = genValue{n: v}
		}
		return out

	case KindString:
		var out []genValue
		for _, l := range edgeLengths(dim.MinLen, dim.MaxLen) {
			out = append(out, genValue{s: strings.Repeat(string(dim.Alphabet[0]), l)})
		}
		return out

	default: // KindVector
		if dim.LenRef >= 0 {
			return []genValue{{fill: dim.Min}, {fill: dim.Max}}
		}
		var out []genValue
		for _, l := range []int{dim.MinLen, dim.MaxLen} {
			for _, fill := range []int64{dim.Min, dim.Max} {
				v := genValue{vec: filledVec(l, fill)}
				if !containsVec(out, v.vec) {
					out = append(out, v)
				}
			}
		}
		return out
	}
}

func midVariant(dim Dim) genValue {
	switch dim.Kind {
	case KindInteger:
		return genValue{n: midpoint(dim.Min, dim.Max)}
	case KindString:
		l := (dim.MinLen + dim.MaxLen) / 2
		return genValue{s: strings.Repeat(string(dim.Alphabet[0]), l)}
	default:
		fill := midpoint(dim.Min, dim.Max)
		if dim.LenRef >= 0 {
			return genValue{fill: fill}
		}
		return genValue{vec: filledVec((dim.MinLen+dim.MaxLen)/2, fill)}
	}
}

func partitionVariants(dim Dim) []genValue {
	switch dim.Kind {
	case KindInteger:
		points := partitionPoints(dim.Min, dim.Max)
		out := make([]genValue, len(points))
		for i, v := range points {
			out[i] = genValue{n: v}
		}
		return out

	case KindString:
		var out []genValue
		for _, p := range partitionPoints(int64(dim.MinLen), int64(dim.MaxLen)) {
			if p < 0 {
				continue
			}
			out = append(out, genValue{s: strings.Repeat(string(dim.Alphabet[0]), int(p))})
		}
		return out

	default: // KindVector
		fill := midpoint(dim.Min, dim.Max)
		if dim.LenRef >= 0 {
			points := partitionPoints(dim.Min, dim.Max)
			out := make([]genValue, len(points))
			for i, v := range points {
				out[i] = genValue{fill: v}
			}
			return out
		}
		var out []genValue
		for _, p := range partitionPoints(int64(dim.MinLen), int64(dim.MaxLen)) {
			if p < 0 {
				continue
			}
			out = append(out, genValue{vec: filledVec(int(p), fill)})
		}
		return out
	}
}

// edgeValues returns the in-range values of
// {min, min+1, max-1, max, 0, 1, -1}, ascending and unique.
func edgeValues(min, max int64) []int64 {
	candidates := []int64{min, satAdd(min, 1), satSub(max, 1), max, 0, 1, -1}
	return uniqueSortedInRange(candidates, min, max)
}

// partitionPoints returns {min, q1, mid, q3, max} plus zero when
// it is in range, ascending and unique.
func partitionPoints(min, max int64) []int64 {
	candidates := []int64{
		min,
		interpolate(min, max, 1, 4),
		midpoint(min, max),
		interpolate(min, max, 3, 4),
		max,
		0,
	}
	return uniqueSortedInRange(candidates, min, max)
}

func uniqueSortedInRange(candidates []int64, min, max int64) []int64 {
	var out []int64
	for _, c := range candidates {
		if c < min || c > max {
			continue
		}
		inserted := false
		for i, existing := range out {
			if c == existing {
				inserted = true
				break
			}
			if c < existing {
				out = append(out[:i], append([]int64{c}, out[i:]...)...)
				inserted = true
				break
			}
		}
		if !inserted {
			out = append(out, c)
		}
	}
	return out
}

func edgeLengths(minLen, maxLen int) []int {
	var out []int
	for _, l := range []int{minLen, minLen + 1, maxLen - 1, maxLen} {
		if l < minLen || l > maxLen {
			continue
		}
		dup := false
		for _, existing := range out {
			if existing == l {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, l)
		}
	}
	return out
}

func midpoint(min, max int64) int64 {
	return interpolate(min, max, 1, 2)
}

// interpolate computes min + (max-min)*num/den without overflow
// for the full int64 range.
func interpolate(min, max int64, num, den uint64) int64 {
	delta := uint64(max) - uint64(min)
	hi, lo := bits.Mul64(delta, num)
	q, _ := bits.Div64(hi, lo, den)
	return int64(uint64(min) + q)
}

func randInt64(rng *rand.Rand, min, max int64) int64 {
	delta := uint64(max) - uint64(min)
	if delta == math.MaxUint64 {
		return int64(rng.Uint64())
	}
	return int64(uint64(min) + rng.Uint64N(delta+1))
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func filledVec(length int, fill int64) []int64 {
	vec := make([]int64, length)
	for i := range vec {
		vec[i] = fill
	}
	return vec
}

func containsVec(values []genValue, vec []int64) bool {
	for _, v := range values {
		if len(v.vec) != len(vec) {
			continue
		}
		same := true
		for i := range vec {
			if v.vec[i] != vec[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func satAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func satSub(a, b int64) int64 {
	if a < math.MinInt64+b {
		return math.MinInt64
	}
	return a - b
}

func saturatingMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
