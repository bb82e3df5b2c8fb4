package token

var keywords = map[string]Kind{
	"pydes": KwPydes,
	"rudes": KwRudes,
	"des":   KwDes,
	"forma": KwForma,
	"enum":  KwEnum,
	"imp":   KwImp,
	"ifz":   KwIfz,
	"fnc":   KwFnc,
	"ret":   KwRet,
	"wyo":   KwWyo,
	"ate":   KwAte,
	"rev":   KwRev,
	"spa":   KwSpa,
	"mth":   KwMth,
	"as":    KwAs,
	"djq":   KwDjq,
	"idit":  KwIdit,
	"muta":  KwMuta,
	"nmut":  KwNmut,
	"soy":   KwSoy,
	"prnt":  KwPrnt,
	"i8":    KwI8,
	"i16":   KwI16,
	"i32":   KwI32,
	"i64":   KwI64,
	"i128":  KwI128,
	"isz":   KwIsz,
	"u8":    KwU8,
	"u16":   KwU16,
	"u32":   KwU32,
	"u64":   KwU64,
	"u128":  KwU128,
	"usz":   KwUsz,
	"f32":   KwF32,
	"f64":   KwF64,
	"strng": KwStrng,
	"stilo": KwStilo,
	"optn":  KwOptn,
	"true":  BoolLit,
	"false": BoolLit,
	"nil":   NilLit,
}

var keywordSpelling = func() map[Kind]string {
	out := make(map[Kind]string, len(keywords))
	for s, k := range keywords {
		if k == BoolLit || k == NilLit {
			continue
		}
		out[k] = s
	}
	return out
}()

// LookupKeyword reports whether ident is a keyword and returns its kind.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Keywords returns every keyword spelling, for completion.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for s := range keywords {
		out = append(out, s)
	}
	return out
}
