package bpm

import "strings"

// TransactionType is a market in the BPM search tree.
type TransactionType string

const (
	TypeUnclassified  TransactionType = "Unclassified"
	TypeAPSMT         TransactionType = "APS-MT"
	TypeCBPRMX        TransactionType = "CBPR-MX"
	TypeSEPAClassic   TransactionType = "SEPA-Classic"
	TypeRITSMX        TransactionType = "RITS-MX"
	TypeLYNXMX        TransactionType = "LYNX-MX"
	TypeEnterpriseISO TransactionType = "EnterpriseISO"
	TypeCHAPSMX       TransactionType = "CHAPS-MX"
	TypeT2SMX         TransactionType = "T2S-MX"
	TypeBESSMT        TransactionType = "BESS-MT"
	TypeCHIPSMX       TransactionType = "CHIPS-MX"
	TypeSEPAInstant   TransactionType = "SEPA-Instant"
	TypeFEDWIRE       TransactionType = "FEDWIRE"
	TypeTaiwanMX      TransactionType = "Taiwan-MX"
	TypeCHATSMX       TransactionType = "CHATS-MX"
	TypePEPPLUSIAT    TransactionType = "PEPPLUS-IAT"
	TypeTSFTrigger    TransactionType = "TSF-TRIGGER"
)

// transactionTypes maps the upper snake case names used by form values to
// the labels shown in the tree.
var transactionTypes = []struct {
	name string
	typ  TransactionType
}{
	{"UNCLASSIFIED", TypeUnclassified},
	{"APS_MT", TypeAPSMT},
	{"CBPR_MX", TypeCBPRMX},
	{"SEPA_CLASSIC", TypeSEPAClassic},
	{"RITS_MX", TypeRITSMX},
	{"LYNX_MX", TypeLYNXMX},
	{"ENTERPRISE_ISO", TypeEnterpriseISO},
	{"CHAPS_MX", TypeCHAPSMX},
	{"T2S_MX", TypeT2SMX},
	{"BESS_MT", TypeBESSMT},
	{"CHIPS_MX", TypeCHIPSMX},
	{"SEPA_INSTANT", TypeSEPAInstant},
	{"FEDWIRE", TypeFEDWIRE},
	{"TAIWAN_MX", TypeTaiwanMX},
	{"CHATS_MX", TypeCHATSMX},
	{"PEPPLUS_IAT", TypePEPPLUSIAT},
	{"TSF_TRIGGER", TypeTSFTrigger},
}

// TransactionTypes lists every market in tree order.
func TransactionTypes() []TransactionType {
	types := make([]TransactionType, len(transactionTypes))
	for i, t := range transactionTypes {
		types[i] = t.typ
	}
	return types
}

// Name is the form value of the type, e.g. "APS_MT".
func (t TransactionType) Name() string {
	for _, tt := range transactionTypes {
		if tt.typ == t {
			return tt.name
		}
	}
	return ""
}

// MapTransactionType resolves s against the type names (exact match) and
// then the tree labels (case-insensitive). It returns an empty slice when
// nothing matches.
func MapTransactionType(s string) []TransactionType {
	if s == "" {
		return []TransactionType{}
	}

	for _, tt := range transactionTypes {
		if tt.name == s {
			return []TransactionType{tt.typ}
		}
	}
	for _, tt := range transactionTypes {
		if strings.EqualFold(string(tt.typ), s) {
			return []TransactionType{tt.typ}
		}
	}
	return []TransactionType{}
}
