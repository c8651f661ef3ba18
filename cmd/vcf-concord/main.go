// Copyright 2021 the pl-tools authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
vcf-concord compares the genotype calls of two sorted VCF files over their
shared samples and writes tab-separated concordance tables
(<prefix>.{both,mismatch,ind,...}) for a downstream plotting stage.
*/

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/MrFlick/pl-tools/concord"
)

var (
	vcf1      = flag.String("vcf1", "", "First input VCF path (.gz accepted); required")
	vcf2      = flag.String("vcf2", "", "Second input VCF path (.gz accepted); required")
	out       = flag.String("out", "", "Output file prefix; required")
	filter    = flag.Bool("filter", concord.DefaultOpts.PassOnly, "Restrict both inputs to records with FILTER in {PASS, 0, .}")
	mono      = flag.Bool("mono", concord.DefaultOpts.IncludeMono, "Include monomorphic sites (no observed alternate allele) instead of skipping them")
	flip      = flag.Bool("flip", concord.DefaultOpts.Flip, "Enable the per-site allele-flip heuristic")
	exIDs     = flag.String("exIDs", "", "Comma-separated sample identifiers to exclude from the comparison")
	minns     = flag.Int("minns", concord.DefaultOpts.MinNS, "Suppress matched sites whose INFO NS value on either record is below this; 0 disables")
	only1     = flag.Bool("only1", concord.DefaultOpts.Only1, "Write records found only in the first file to <prefix>.only1")
	only2     = flag.Bool("only2", concord.DefaultOpts.Only2, "Write records found only in the second file to <prefix>.only2")
	gq        = flag.Bool("gq", concord.DefaultOpts.GQ, "Write per-genotype-quality concordance to <prefix>.gqs (GQ taken from the second file)")
	freq      = flag.Bool("freq", concord.DefaultOpts.Freq, "Write per-frequency-bucket concordance to <prefix>.frqs (AF taken from INFO)")
	joint     = flag.Bool("joint", concord.DefaultOpts.Joint, "Write the joint tabulation to <prefix>.joint")
	jointDims = flag.String("jointdims", concord.DefaultOpts.JointDims, "Joint tabulation dimensions, a comma-separated subset of ind,frq,maj,gq")
	cutoffs   = flag.String("cutoffs", "", "Ascending comma-separated MAF cutoffs for -freq (default 0.01,0.05,0.15,0.25)")
)

func vcfConcordUsage() {
	fmt.Printf("Usage: %s -vcf1 <path> -vcf2 <path> -out <prefix> [OPTIONS]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func parseCutoffs(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func main() {
	flag.Usage = vcfConcordUsage
	shutdown := grail.Init()
	defer shutdown()

	if *vcf1 == "" || *vcf2 == "" || *out == "" {
		log.Fatalf("-vcf1, -vcf2, and -out are all required")
	}
	opts := concord.Opts{
		PassOnly:    *filter,
		IncludeMono: *mono,
		Flip:        *flip,
		ExcludeIDs:  *exIDs,
		MinNS:       *minns,
		Only1:       *only1,
		Only2:       *only2,
		GQ:          *gq,
		Freq:        *freq,
		Joint:       *joint,
		JointDims:   *jointDims,
		FreqCutoffs: concord.DefaultOpts.FreqCutoffs,
	}
	if *cutoffs != "" {
		vals, err := parseCutoffs(*cutoffs)
		if err != nil {
			log.Fatalf("bad -cutoffs value %q: %v", *cutoffs, err)
		}
		opts.FreqCutoffs = vals
	}
	ctx := vcontext.Background()
	if err := concord.Run(ctx, *vcf1, *vcf2, *out, opts); err != nil {
		log.Fatalf("vcf-concord: %v", err)
	}
	log.Debug.Printf("exiting")
}
