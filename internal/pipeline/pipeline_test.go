// internal/pipeline/pipeline_test.go
package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"seeddb-core/alphabet"
	"seeddb-core/multiseq"
	"seeddb-core/seed"
	"seeddb-core/ssa"
	"seeddb-core/tantan"
	"seeddb/internal/runutil"
)

func testConfig(t *testing.T, dir string) Config {
	t.Helper()
	return Config{
		OutName:         filepath.Join(dir, "db"),
		Format:          multiseq.Fasta,
		IndexStep:       1,
		MinimizerWindow: 1,
		BucketDepth:     0,
		ChildKind:       ssa.ChildNone,
		CaseSensitive:   true,
		VolumeBytes:     1 << 30,
		Threads:         2,
		CheckDubiousDNA: true,
	}
}

func runBuild(t *testing.T, cfg Config, patterns ...string) error {
	t.Helper()
	alph, err := alphabet.New(alphabet.DNA)
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) == 0 {
		patterns = []string{"1"}
	}
	var seedText strings.Builder
	for _, p := range patterns {
		text, err := seed.StringFromPatterns(p, alphabet.DNA)
		if err != nil {
			t.Fatal(err)
		}
		seedText.WriteString(text)
	}
	cfg.SeedText = seedText.String()
	seeds, err := seed.ParseText(cfg.SeedText, cfg.CaseSensitive, alph)
	if err != nil {
		t.Fatal(err)
	}
	var masker *tantan.Masker
	if cfg.Tantan > 0 {
		masker = tantan.New(false, cfg.Tantan > 1, alph)
	}
	log := runutil.NewLogger("seeddb", 0, os.Stderr)
	return Build(context.Background(), cfg, alph, seeds, masker, log)
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readPrj(t *testing.T, path string) map[string]string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	kv := make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		if i := strings.IndexByte(line, '='); i > 0 && line[0] != '#' {
			kv[line[:i]] = line[i+1:]
		}
	}
	return kv
}

func readSuf(t *testing.T, path string) (textLen uint32, positions []uint32) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(b)
	var hdr [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		t.Fatal(err)
	}
	positions = make([]uint32, hdr[1])
	if err := binary.Read(r, binary.LittleEndian, positions); err != nil {
		t.Fatal(err)
	}
	return hdr[0], positions
}

func TestSingleSequenceDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", ">x\nACGTACGTACGT\n")}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}

	kv := readPrj(t, cfg.OutName+".prj")
	if kv["numofsequences"] != "1" || kv["numofletters"] != "12" {
		t.Errorf("counts: %v", kv)
	}
	if kv["letterfreqs"] != "3 3 3 3" {
		t.Errorf("letterfreqs = %q", kv["letterfreqs"])
	}
	if kv["numofindexes"] != "1" {
		t.Errorf("single volume should report numofindexes, got %v", kv)
	}
	if _, ok := kv["volumes"]; ok {
		t.Error("single volume must not report volumes=")
	}
	if kv["masklowercase"] != "1" || kv["keeplowercase"] != "0" {
		t.Errorf("case keys: %v", kv)
	}

	textLen, positions := readSuf(t, cfg.OutName+".suf")
	if textLen != 14 { // delimiter + 12 letters + delimiter
		t.Errorf("text length = %d, want 14", textLen)
	}
	if len(positions) != 12 {
		t.Errorf("got %d positions, want 12", len(positions))
	}
}

func TestEmptyInput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", "")}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}
	kv := readPrj(t, cfg.OutName+".prj")
	if kv["numofsequences"] != "0" || kv["numofletters"] != "0" {
		t.Errorf("empty database counts: %v", kv)
	}
	if kv["volumes"] != "0" {
		t.Errorf("volumes = %q, want 0", kv["volumes"])
	}
}

func TestCountsOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.CountsOnly = true
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", ">a\nACG\n>b\nTTTT\n")}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}
	kv := readPrj(t, cfg.OutName+".prj")
	if kv["numofsequences"] != "2" || kv["numofletters"] != "7" {
		t.Errorf("counts: %v", kv)
	}
	if _, ok := kv["maxunsortedinterval"]; ok {
		t.Error("counts-only manifest must omit the index block")
	}
	for _, ext := range []string{".tis", ".suf", ".bck"} {
		if _, err := os.Stat(cfg.OutName + ext); err == nil {
			t.Errorf("counts-only build wrote %s", ext)
		}
	}
}

func TestMultiVolumeBuild(t *testing.T) {
	dir := t.TempDir()
	var in strings.Builder
	for i := 0; i < 12; i++ {
		in.WriteString(">s" + strconv.Itoa(i) + "\n")
		in.WriteString(strings.Repeat("ACGT", 10) + "\n")
	}
	cfg := testConfig(t, dir)
	// x = 1*1 + 5 per position; 600/6 = 100 letters per volume.
	cfg.VolumeBytes = 600
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", in.String())}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}

	top := readPrj(t, cfg.OutName+".prj")
	volumes, err := strconv.Atoi(top["volumes"])
	if err != nil || volumes < 2 {
		t.Fatalf("volumes = %q, want > 1", top["volumes"])
	}
	if top["numofsequences"] != "12" {
		t.Errorf("top-level sequences = %q", top["numofsequences"])
	}

	sum := 0
	for v := 0; v < volumes; v++ {
		base := cfg.OutName + strconv.Itoa(v)
		kv := readPrj(t, base+".prj")
		if kv["volumes"] != "-1" {
			t.Errorf("volume %d: volumes = %q, want -1", v, kv["volumes"])
		}
		n, err := strconv.Atoi(kv["numofsequences"])
		if err != nil {
			t.Fatal(err)
		}
		sum += n
		if _, err := os.Stat(base + ".tis"); err != nil {
			t.Errorf("volume %d has no sequence file", v)
		}
		if _, err := os.Stat(base + ".suf"); err != nil {
			t.Errorf("volume %d has no index file", v)
		}
	}
	if sum != 12 {
		t.Errorf("volume sequences sum to %d, want 12", sum)
	}
	if _, err := os.Stat(cfg.OutName + strconv.Itoa(volumes) + ".prj"); err == nil {
		t.Error("extra volume beyond the declared count")
	}
}

func TestOversizeSequenceBecomesOwnVolume(t *testing.T) {
	dir := t.TempDir()
	// 100 letters per volume; the middle sequence alone is 150 letters.
	// The cap is lifted for the first sequence of each volume, so it must
	// land whole in a volume of its own instead of failing the build.
	in := ">s0\n" + strings.Repeat("ACGT", 10) + "\n" +
		">s1\n" + strings.Repeat("ACGT", 37) + "AC\n" +
		">s2\n" + strings.Repeat("ACGT", 10) + "\n"
	cfg := testConfig(t, dir)
	cfg.VolumeBytes = 600
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", in)}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}

	top := readPrj(t, cfg.OutName+".prj")
	volumes, err := strconv.Atoi(top["volumes"])
	if err != nil || volumes < 2 {
		t.Fatalf("volumes = %q, want > 1", top["volumes"])
	}
	found := false
	sum := 0
	for v := 0; v < volumes; v++ {
		kv := readPrj(t, cfg.OutName+strconv.Itoa(v)+".prj")
		n, err := strconv.Atoi(kv["numofsequences"])
		if err != nil {
			t.Fatal(err)
		}
		sum += n
		if kv["numofletters"] == "150" {
			if n != 1 {
				t.Errorf("oversize sequence shares volume %d with %d others", v, n-1)
			}
			found = true
		}
	}
	if !found {
		t.Error("no volume holds the oversize sequence alone")
	}
	if sum != 3 {
		t.Errorf("volume sequences sum to %d, want 3", sum)
	}
}

func TestMultipleSeedsSuffixFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", ">x\nACGTACGTACGT\n")}
	if err := runBuild(t, cfg, "10", "01"); err != nil {
		t.Fatal(err)
	}
	kv := readPrj(t, cfg.OutName+".prj")
	if kv["numofindexes"] != "2" {
		t.Errorf("numofindexes = %q", kv["numofindexes"])
	}
	for _, suffix := range []string{"a", "b"} {
		if _, err := os.Stat(cfg.OutName + suffix + ".suf"); err != nil {
			t.Errorf("missing index files for seed %q", suffix)
		}
	}
	if _, err := os.Stat(cfg.OutName + ".suf"); err == nil {
		t.Error("multi-seed build must not write an unsuffixed index")
	}
}

func TestTantanMaskingExcludesPositions(t *testing.T) {
	dir := t.TempDir()
	letters := strings.Repeat("AC", 30)
	cfg := testConfig(t, dir)
	cfg.Tantan = 1
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", ">x\n"+letters+"\n")}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}

	tis, err := os.ReadFile(cfg.OutName + ".tis")
	if err != nil {
		t.Fatal(err)
	}
	masked := 0
	for _, c := range tis {
		if c >= 27 { // lowercase code block
			masked++
		}
	}
	if masked == 0 {
		t.Fatal("tantan should mask part of a simple repeat")
	}
	_, positions := readSuf(t, cfg.OutName+".suf")
	if len(positions) >= len(letters) {
		t.Errorf("masked positions still indexed: %d of %d", len(positions), len(letters))
	}
	if len(positions)+masked != len(letters) {
		t.Errorf("%d positions + %d masked != %d letters", len(positions), masked, len(letters))
	}
	if kv := readPrj(t, cfg.OutName+".prj"); kv["tantansetting"] != "1" {
		t.Errorf("tantansetting = %q", kv["tantansetting"])
	}
}

func TestFastqDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Format = multiseq.FastqSanger
	cfg.Inputs = []string{writeInput(t, dir, "in.fq", "@r1\nACGT\n+\nIIII\n@r2\nTTTT\n+\nIIII\n")}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}
	kv := readPrj(t, cfg.OutName+".prj")
	if kv["numofsequences"] != "2" || kv["numofletters"] != "8" {
		t.Errorf("counts: %v", kv)
	}
	if kv["sequenceformat"] != "fastq-sanger" {
		t.Errorf("sequenceformat = %q", kv["sequenceformat"])
	}
	qua, err := os.ReadFile(cfg.OutName + ".qua")
	if err != nil {
		t.Fatal(err)
	}
	tis, err := os.ReadFile(cfg.OutName + ".tis")
	if err != nil {
		t.Fatal(err)
	}
	if len(qua) != len(tis) {
		t.Errorf("qua length %d != tis length %d", len(qua), len(tis))
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	input := ">a\nACGTACGTGGTTACACACGT\n>b\nTTTTACGTACGT\n"
	read := func(dir string) []byte {
		cfg := testConfig(t, dir)
		cfg.Threads = 4
		cfg.Inputs = []string{writeInput(t, dir, "in.fa", input)}
		if err := runBuild(t, cfg); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(cfg.OutName + ".suf")
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	first := read(t.TempDir())
	second := read(t.TempDir())
	if !bytes.Equal(first, second) {
		t.Error("two builds of the same input differ")
	}
}

func TestMinimizerWindowRecorded(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.MinimizerWindow = 4
	cfg.Inputs = []string{writeInput(t, dir, "in.fa", ">x\n"+strings.Repeat("ACGT", 8)+"\n")}
	if err := runBuild(t, cfg); err != nil {
		t.Fatal(err)
	}
	kv := readPrj(t, cfg.OutName+".prj")
	if kv["minimizerwindow"] != "4" {
		t.Errorf("minimizerwindow = %q", kv["minimizerwindow"])
	}
	_, positions := readSuf(t, cfg.OutName+".suf")
	if len(positions) == 0 || len(positions) >= 32 {
		t.Errorf("minimizer filter kept %d positions", len(positions))
	}
}
