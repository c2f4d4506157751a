package machine_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/loxvm/internal/filetest"
	"github.com/mna/loxvm/lang/machine"
)

var testUpdateVMTests = flag.Bool("test.update-vm-tests", false, "If set, replace expected VM test results with actual results.")

// TestInterpret runs every .lox program under testdata/in against a fresh
// VM and compares its stdout against the matching golden file in
// testdata/out, using the golden-diff helpers of internal/filetest.
func TestInterpret(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			vm := machine.New()
			vm.Stdout = &buf
			vm.Stderr = &buf

			if err := vm.Interpret(ctx, fi.Name(), src); err != nil {
				t.Fatalf("interpret %s: %v", fi.Name(), err)
			}
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateVMTests)
		})
	}
}
