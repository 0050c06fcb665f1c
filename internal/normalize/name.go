package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// surnameConnectors are lowercase particles that belong to the surname that follows them.
var surnameConnectors = map[string]struct{}{
	"de":  {},
	"do":  {},
	"da":  {},
	"dos": {},
	"das": {},
}

// Name is a free-text full name split into its parts. Any field may be nil.
type Name struct {
	Name      *string
	FirstName *string
	LastName  *string
}

// ParseName cleans a full name and splits it into first and last name.
// Non-letters are dropped and every token is title-cased. The last name is the final token
// together with any connector particles directly before it, so "ana maria de souza" gives
// LastName "de Souza". A single token yields no last name.
func ParseName(input string) Name {
	var out Name

	tokens := strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, input))
	if len(tokens) == 0 {
		return out
	}

	title := cases.Title(language.Und)
	titled := make([]string, len(tokens))
	for i, t := range tokens {
		titled[i] = title.String(t)
	}

	name := strings.Join(titled, " ")
	out.Name = &name
	out.FirstName = &titled[0]

	if len(tokens) == 1 {
		return out
	}

	i := len(tokens) - 1
	last := []string{titled[i]}
	for i > 0 && isConnector(tokens[i-1]) {
		last = append([]string{strings.ToLower(tokens[i-1])}, last...)
		i--
	}
	lastName := strings.Join(last, " ")
	out.LastName = &lastName
	return out
}

func isConnector(token string) bool {
	_, ok := surnameConnectors[strings.ToLower(token)]
	return ok
}
