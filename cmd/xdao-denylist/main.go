// Command xdao-denylist builds, signs, and verifies denylist filter
// artifacts and their signature manifests.
package main

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"

	"xdao.co/denylist/descriptor"
	"xdao.co/denylist/filter"
	"xdao.co/denylist/keys"
	"xdao.co/denylist/manifest"
	"xdao.co/denylist/multisig"
	"xdao.co/denylist/storage/bundle"
	"xdao.co/denylist/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "filter":
		return cmdFilter(args[1:], out, errOut)
	case "manifest":
		return cmdManifest(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "archive":
		return cmdArchive(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-denylist: signed denylist filter tooling")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-denylist manifest generate --input descriptor.json --data data.bin --key public_key.json --manifest manifest.json --serial <n> [--force]")
	fmt.Fprintln(w, "  xdao-denylist manifest sign --data data.bin --manifest manifest.json (--signer <name> | --seed-hex <64hex> | --key-file <path>)")
	fmt.Fprintln(w, "  xdao-denylist manifest verify --data data.bin --key public_key.json --manifest manifest.json")
	fmt.Fprintln(w, "  xdao-denylist filter generate --data data.bin --key public_key.json --manifest manifest.json --output filter.bin [--archive <dir>]")
	fmt.Fprintln(w, "  xdao-denylist filter contains --input filter.bin <key> [target]")
	fmt.Fprintln(w, "  xdao-denylist filter verify --input filter.bin --key public_key.json")
	fmt.Fprintln(w, "  xdao-denylist filter info --input filter.bin")
	fmt.Fprintln(w, "  xdao-denylist key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-denylist key list")
	fmt.Fprintln(w, "  xdao-denylist key export --name <name>")
	fmt.Fprintln(w, "  xdao-denylist archive export --archive <dir> --output release.tar <cid> [<cid>...]")
	fmt.Fprintln(w, "  xdao-denylist archive import --archive <dir> --input release.tar")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - data.bin holds the filter's signing bytes; filter.bin the signed artifact")
	fmt.Fprintln(w, "  - public_key.json lists the trusted signer set (ordered) and an optional threshold")
	fmt.Fprintln(w, "  - signer keys are stored under ~/.xdao/denylist-keys (0600 seed files)")
}

func printJSON(out io.Writer, v any) int {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 1
	}
	fmt.Fprintln(out, string(b))
	return 0
}

func openOutputFile(path string, failIfExists bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if failIfExists {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	return os.OpenFile(path, flags, 0o644)
}

func loadKeyManifest(path string) (*multisig.KeyManifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", path, err)
	}
	return multisig.FromJSON(b)
}

func loadManifest(path string) (*manifest.Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return manifest.FromJSON(b)
}

func loadFilter(path string) (*filter.Filter, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading filter %s: %w", path, err)
	}
	return filter.FromBytes(b)
}

func cmdFilter(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-denylist filter <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: generate, contains, verify, info")
		return 2
	}
	switch args[0] {
	case "generate":
		return cmdFilterGenerate(args[1:], out, errOut)
	case "contains":
		return cmdFilterContains(args[1:], out, errOut)
	case "verify":
		return cmdFilterVerify(args[1:], out, errOut)
	case "info":
		return cmdFilterInfo(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown filter subcommand: %s\n", args[0])
		return 2
	}
}

// cmdFilterGenerate stamps the aggregate signature from a manifest into the
// signing data and writes the final artifact.
func cmdFilterGenerate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("filter generate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dataPath := fs.String("data", "data.bin", "signing data file generated by the manifest command")
	keyPath := fs.String("key", "public_key.json", "public key manifest file")
	outputPath := fs.String("output", "filter.bin", "output file for the signed filter")
	manifestPath := fs.String("manifest", "manifest.json", "signature manifest file")
	archiveRoot := fs.String("archive", "", "optional artifact archive directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	m, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	km, err := loadKeyManifest(*keyPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	key, err := km.Key()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	f, err := loadFilter(*dataPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	signature, err := m.Sign(km)
	if err != nil {
		fmt.Fprintf(errOut, "assembling signature: %v\n", err)
		return 1
	}
	f.StampSignature(signature, m.Serial)

	file, err := openOutputFile(*outputPath, false)
	if err != nil {
		fmt.Fprintf(errOut, "writing filter %s: %v\n", *outputPath, err)
		return 1
	}
	if _, err := file.Write(f.ToBytes()); err != nil {
		_ = file.Close()
		fmt.Fprintf(errOut, "writing filter %s: %v\n", *outputPath, err)
		return 1
	}
	if err := file.Close(); err != nil {
		fmt.Fprintf(errOut, "writing filter %s: %v\n", *outputPath, err)
		return 1
	}

	result := map[string]any{
		"address":  key.Address(),
		"verified": true,
	}
	if *archiveRoot != "" {
		archive, err := localfs.New(*archiveRoot)
		if err != nil {
			fmt.Fprintf(errOut, "opening archive: %v\n", err)
			return 1
		}
		dataCID, err := archive.Put(f.SigningBytes())
		if err != nil {
			fmt.Fprintf(errOut, "archiving signing data: %v\n", err)
			return 1
		}
		filterCID, err := archive.Put(f.ToBytes())
		if err != nil {
			fmt.Fprintf(errOut, "archiving filter: %v\n", err)
			return 1
		}
		result["archived"] = map[string]string{
			"signing-data": dataCID.String(),
			"filter":       filterCID.String(),
		}
	}

	if err := f.Verify(key); err != nil {
		fmt.Fprintf(errOut, "filter does not verify: %v\n", err)
		return 1
	}
	return printJSON(out, result)
}

func cmdFilterContains(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("filter contains", flag.ContinueOnError)
	fs.SetOutput(errOut)
	inputPath := fs.String("input", "filter.bin", "filter file to query")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fmt.Fprintln(errOut, "usage: xdao-denylist filter contains --input filter.bin <key> [target]")
		return 2
	}

	f, err := loadFilter(*inputPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	key, err := keys.ParseIdentity(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid key: %v\n", err)
		return 1
	}

	var inFilter bool
	if fs.NArg() == 2 {
		target, err := keys.ParseIdentity(fs.Arg(1))
		if err != nil {
			fmt.Fprintf(errOut, "invalid target: %v\n", err)
			return 1
		}
		inFilter = f.ContainsEdge(key, target)
	} else {
		inFilter = f.Contains(key)
	}
	return printJSON(out, map[string]any{
		"address":   key.String(),
		"in_filter": inFilter,
	})
}

func cmdFilterVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("filter verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	inputPath := fs.String("input", "filter.bin", "filter file to verify")
	keyPath := fs.String("key", "public_key.json", "public key manifest file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	f, err := loadFilter(*inputPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	km, err := loadKeyManifest(*keyPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	key, err := km.Key()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := f.Verify(key); err != nil {
		fmt.Fprintf(errOut, "filter does not verify: %v\n", err)
		return 1
	}
	return printJSON(out, map[string]any{
		"address":  key.Address(),
		"verified": true,
	})
}

func cmdFilterInfo(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("filter info", flag.ContinueOnError)
	fs.SetOutput(errOut)
	inputPath := fs.String("input", "filter.bin", "filter file to inspect")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	f, err := loadFilter(*inputPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return printJSON(out, f.Info())
}

func cmdManifest(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-denylist manifest <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: generate, sign, verify")
		return 2
	}
	switch args[0] {
	case "generate":
		return cmdManifestGenerate(args[1:], out, errOut)
	case "sign":
		return cmdManifestSign(args[1:], out, errOut)
	case "verify":
		return cmdManifestVerify(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown manifest subcommand: %s\n", args[0])
		return 2
	}
}

// cmdManifestGenerate builds the unsigned filter for a descriptor and
// writes both the signature manifest and the signing data file.
func cmdManifestGenerate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("manifest generate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	inputPath := fs.String("input", "descriptor.json", "descriptor file")
	dataPath := fs.String("data", "data.bin", "output file for the filter signing data")
	keyPath := fs.String("key", "public_key.json", "public key manifest file")
	manifestPath := fs.String("manifest", "manifest.json", "output file for the manifest")
	force := fs.Bool("force", false, "overwrite an existing manifest file")
	serial := fs.Uint("serial", 0, "serial number for the filter")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	descBytes, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(errOut, "reading descriptor %s: %v\n", *inputPath, err)
		return 1
	}
	d, err := descriptor.FromJSON(descBytes)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	km, err := loadKeyManifest(*keyPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	f, err := filter.Build(uint32(*serial), d)
	if err != nil {
		fmt.Fprintf(errOut, "building filter: %v\n", err)
		return 1
	}

	m := manifest.New(uint32(*serial), f.Hash(), km)
	mBytes, err := m.ToJSON()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	mFile, err := openOutputFile(*manifestPath, !*force)
	if err != nil {
		fmt.Fprintf(errOut, "writing manifest %s: %v\n", *manifestPath, err)
		return 1
	}
	if _, err := mFile.Write(mBytes); err != nil {
		_ = mFile.Close()
		fmt.Fprintf(errOut, "writing manifest %s: %v\n", *manifestPath, err)
		return 1
	}
	if err := mFile.Close(); err != nil {
		fmt.Fprintf(errOut, "writing manifest %s: %v\n", *manifestPath, err)
		return 1
	}

	dFile, err := openOutputFile(*dataPath, false)
	if err != nil {
		fmt.Fprintf(errOut, "writing signing data %s: %v\n", *dataPath, err)
		return 1
	}
	if _, err := dFile.Write(f.SigningBytes()); err != nil {
		_ = dFile.Close()
		fmt.Fprintf(errOut, "writing signing data %s: %v\n", *dataPath, err)
		return 1
	}
	if err := dFile.Close(); err != nil {
		fmt.Fprintf(errOut, "writing signing data %s: %v\n", *dataPath, err)
		return 1
	}
	return 0
}

// cmdManifestSign adds one signer's endorsement of the signing data to the
// manifest.
func cmdManifestSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("manifest sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dataPath := fs.String("data", "data.bin", "signing data file")
	manifestPath := fs.String("manifest", "manifest.json", "manifest file to update")
	signerName := fs.String("signer", "", "stored signer key name")
	seedHex := fs.String("seed-hex", "", "inline ed25519 seed (64 hex chars)")
	keyFile := fs.String("key-file", "", "path to a seed file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	seed, err := ks.LoadSeed(*seedHex, *signerName, *keyFile)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	signer, err := keys.NewEd25519Signer(seed)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	signingBytes, err := os.ReadFile(*dataPath)
	if err != nil {
		fmt.Fprintf(errOut, "reading signing data %s: %v\n", *dataPath, err)
		return 1
	}
	m, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := m.AddSignature(signer, signingBytes); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	mBytes, err := m.ToJSON()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := os.WriteFile(*manifestPath, mBytes, 0o644); err != nil {
		fmt.Fprintf(errOut, "writing manifest %s: %v\n", *manifestPath, err)
		return 1
	}
	return printJSON(out, map[string]any{
		"signer": signer.Identity().String(),
		"signed": true,
	})
}

// cmdManifestVerify re-derives the hash from the signing data and reports
// per-signer verification results.
func cmdManifestVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("manifest verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dataPath := fs.String("data", "data.bin", "signing data file")
	keyPath := fs.String("key", "public_key.json", "public key manifest file")
	manifestPath := fs.String("manifest", "manifest.json", "manifest file to verify")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	m, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	km, err := loadKeyManifest(*keyPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	key, err := km.Key()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	f, err := loadFilter(*dataPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	signingBytes := f.SigningBytes()

	hashErr := m.VerifyFilter(f)
	verifies := make([]manifest.SignatureVerify, 0, len(m.Signatures))
	for _, s := range m.Signatures {
		verifies = append(verifies, s.Verify(signingBytes))
	}

	return printJSON(out, map[string]any{
		"signing_data": *dataPath,
		"hash": map[string]any{
			"serial":   m.Serial,
			"hash":     m.Hash,
			"verified": hashErr == nil,
		},
		"public_key": key.Address(),
		"signatures": verifies,
	})
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-denylist key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, list, export")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "signer key name")
	seedHex := fs.String("seed-hex", "", "ed25519 seed (64 hex chars); random if omitted")
	force := fs.Bool("force", false, "overwrite an existing key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(errOut, "usage: xdao-denylist key init --name <name> [--seed-hex <64hex>] [--force]")
		return 2
	}

	var seed []byte
	if *seedHex != "" {
		var err error
		seed, err = keys.ParseSeedHex(*seedHex)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	} else {
		seed = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, seed); err != nil {
			fmt.Fprintf(errOut, "generating seed: %v\n", err)
			return 1
		}
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	identity, filePath, err := ks.InitializeKey(*name, seed, *force)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			fmt.Fprintf(errOut, "key %q already exists (use --force to overwrite)\n", *name)
			return 1
		}
		fmt.Fprintln(errOut, err)
		return 1
	}
	return printJSON(out, map[string]any{
		"name":     *name,
		"identity": identity,
		"path":     filePath,
	})
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%s\n", e.Name, e.Identity)
	}
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "signer key name")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(errOut, "usage: xdao-denylist key export --name <name>")
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	identity, err := ks.ExportKey(*name)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, identity)
	return 0
}

func cmdArchive(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-denylist archive <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdArchiveExport(args[1:], out, errOut)
	case "import":
		return cmdArchiveImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown archive subcommand: %s\n", args[0])
		return 2
	}
}

// cmdArchiveExport writes a deterministic TAR bundle of the named archive
// blocks, suitable for offline transfer of a release.
func cmdArchiveExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	archiveRoot := fs.String("archive", "", "artifact archive directory")
	outputPath := fs.String("output", "release.tar", "output bundle file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *archiveRoot == "" || fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: xdao-denylist archive export --archive <dir> --output release.tar <cid> [<cid>...]")
		return 2
	}

	ids := make([]cid.Cid, 0, fs.NArg())
	for _, arg := range fs.Args() {
		id, err := cid.Decode(arg)
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid %q: %v\n", arg, err)
			return 1
		}
		ids = append(ids, id)
	}

	archive, err := localfs.New(*archiveRoot)
	if err != nil {
		fmt.Fprintf(errOut, "opening archive: %v\n", err)
		return 1
	}
	file, err := openOutputFile(*outputPath, false)
	if err != nil {
		fmt.Fprintf(errOut, "writing bundle %s: %v\n", *outputPath, err)
		return 1
	}
	if err := bundle.Export(file, archive, ids, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		_ = file.Close()
		fmt.Fprintf(errOut, "exporting bundle: %v\n", err)
		return 1
	}
	if err := file.Close(); err != nil {
		fmt.Fprintf(errOut, "writing bundle %s: %v\n", *outputPath, err)
		return 1
	}
	return printJSON(out, map[string]any{
		"bundle": *outputPath,
		"blocks": len(ids),
	})
}

// cmdArchiveImport loads a bundle into the archive, validating every block
// against its CID.
func cmdArchiveImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	archiveRoot := fs.String("archive", "", "artifact archive directory")
	inputPath := fs.String("input", "release.tar", "bundle file to import")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *archiveRoot == "" {
		fmt.Fprintln(errOut, "usage: xdao-denylist archive import --archive <dir> --input release.tar")
		return 2
	}

	archive, err := localfs.New(*archiveRoot)
	if err != nil {
		fmt.Fprintf(errOut, "opening archive: %v\n", err)
		return 1
	}
	file, err := os.Open(*inputPath)
	if err != nil {
		fmt.Fprintf(errOut, "reading bundle %s: %v\n", *inputPath, err)
		return 1
	}
	defer file.Close()
	if err := bundle.Import(file, archive, bundle.ImportOptions{}); err != nil {
		fmt.Fprintf(errOut, "importing bundle: %v\n", err)
		return 1
	}
	return printJSON(out, map[string]any{
		"bundle":   *inputPath,
		"imported": true,
	})
}
