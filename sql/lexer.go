package sql

type Token struct {
	Type  TokenType
	Value string
}

type TokenType int

const (
	Identifier TokenType = iota
	Number
	String
	Comma
	ParenOpen
	ParenClose
	Equals
	Wildcard
	Create
	TableKeyword
	Insert
	Into
	Values
	Select
	From
	Join
	On
	Where
	Update
	Set
	Delete
	Primary
	Key
	Unique
	Not
	Null
	EOF
	Unknown
)

func (token Token) String() string {
	switch token.Type {
	case Identifier:
		return "Identifier(" + token.Value + ")"
	case Number:
		return "Number(" + token.Value + ")"
	case String:
		return "String(" + token.Value + ")"
	case Comma:
		return "Comma"
	case ParenOpen:
		return "ParenOpen"
	case ParenClose:
		return "ParenClose"
	case Equals:
		return "Equals"
	case Wildcard:
		return "Wildcard"
	case EOF:
		return "EOF"
	case Unknown:
		return "Unknown(" + token.Value + ")"
	default:
		return "Keyword(" + token.Value + ")"
	}
}

// IsWord reports whether the token is a bare word: an identifier or a
// keyword. Keywords are accepted wherever a name is expected.
func (token Token) IsWord() bool {
	return token.Type == Identifier || (token.Type >= Create && token.Type <= Null)
}

// describe renders a token for error messages.
func (token Token) describe() string {
	switch token.Type {
	case EOF:
		return "end of statement"
	case String:
		return "'" + token.Value + "'"
	default:
		return token.Value
	}
}

type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(sql string) *Lexer {
	lexer := &Lexer{sql: sql}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition]
}

func (lexer *Lexer) NextToken() Token {
	var token Token

	lexer.skipWhitespace()

	switch lexer.ch {
	case ',':
		token = Token{Type: Comma, Value: ","}
	case '(':
		token = Token{Type: ParenOpen, Value: "("}
	case ')':
		token = Token{Type: ParenClose, Value: ")"}
	case '=':
		token = Token{Type: Equals, Value: "="}
	case '*':
		token = Token{Type: Wildcard, Value: "*"}
	case 0:
		if lexer.position < len(lexer.sql) {
			token = Token{Type: Unknown, Value: string(lexer.ch)}
			break
		}
		return Token{Type: EOF}
	case '\'', '"':
		value, ok := lexer.readString()
		if !ok {
			return Token{Type: Unknown, Value: "unterminated string"}
		}
		token = Token{Type: String, Value: value}
	default:
		if isLetter(lexer.ch) {
			literal := lexer.readWord()
			return Token{Type: lookupIdentifier(literal), Value: literal}
		} else if isNumberStart(lexer.ch) {
			return Token{Type: Number, Value: lexer.readNumber()}
		}
		token = Token{Type: Unknown, Value: string(lexer.ch)}
	}

	lexer.readChar()
	return token
}

func (lexer *Lexer) PeekToken() Token {
	savedPosition := lexer.position
	savedReadPosition := lexer.readPosition
	savedCh := lexer.ch

	token := lexer.NextToken()

	lexer.position = savedPosition
	lexer.readPosition = savedReadPosition
	lexer.ch = savedCh

	return token
}

func (lexer *Lexer) skipWhitespace() {
	for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
		lexer.readChar()
	}
}

func (lexer *Lexer) readWord() string {
	position := lexer.position
	for isWordChar(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

// readNumber reads a bare numeric literal such as 42, -7, 2.5 or 1e-3.
// Anything that does not parse as a number is later kept as a string.
func (lexer *Lexer) readNumber() string {
	position := lexer.position
	lexer.readChar()
	for isWordChar(lexer.ch) || lexer.ch == '-' || lexer.ch == '+' {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

// readString reads a quoted literal. A doubled quote inside the literal
// stands for one quote character. Leaves lexer.ch on the closing quote.
func (lexer *Lexer) readString() (string, bool) {
	quote := lexer.ch
	var value []byte
	for {
		lexer.readChar()
		switch {
		case lexer.ch == 0 && lexer.position >= len(lexer.sql):
			return "", false
		case lexer.ch == quote && lexer.peekChar() == quote:
			value = append(value, quote)
			lexer.readChar()
		case lexer.ch == quote:
			return string(value), true
		default:
			value = append(value, lexer.ch)
		}
	}
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '.'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isNumberStart(ch byte) bool {
	return isDigit(ch) || ch == '-' || ch == '+' || ch == '.'
}

func lookupIdentifier(id string) TokenType {
	switch toUpper(id) {
	case "CREATE":
		return Create
	case "TABLE":
		return TableKeyword
	case "INSERT":
		return Insert
	case "INTO":
		return Into
	case "VALUES":
		return Values
	case "SELECT":
		return Select
	case "FROM":
		return From
	case "JOIN":
		return Join
	case "ON":
		return On
	case "WHERE":
		return Where
	case "UPDATE":
		return Update
	case "SET":
		return Set
	case "DELETE":
		return Delete
	case "PRIMARY":
		return Primary
	case "KEY":
		return Key
	case "UNIQUE":
		return Unique
	case "NOT":
		return Not
	case "NULL":
		return Null
	default:
		return Identifier
	}
}

// toUpper converts a string to uppercase without allocating for ASCII strings
func toUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := make([]byte, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] >= 'a' && s[j] <= 'z' {
					b[j] = s[j] - 32
				} else {
					b[j] = s[j]
				}
			}
			return string(b)
		}
	}
	return s
}

func tokenize(sql string) []Token {
	lexer := NewLexer(sql)

	var tokens []Token

	for {
		token := lexer.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOF || token.Type == Unknown {
			return tokens
		}
	}
}
