package lexer

import (
	"aqua/internal/token"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let ten = 10;

let add = fn(x, y) {
  x + y;
};

let result = add(five, ten);
!-/*5;
5 < 10 > 5;
5 <= 10 >= 5;

if (5 < 10) {
	return true;
} elif (1 == 2) {
	break;
} else {
	return false;
}
# line comment
10 == 10; # trailing comment
10 != 9;
## block
   comment ##
true && false || true;
x += 1; x -= 1; x *= 2; x /= 2;
"foobar"
"foo bar"
[1, 2];
{"foo": "bar"}
1.5f 2.25d 1.f 3.d 4.5
for (let i = 0; i < 3; i += 1) {}
mod.fun
& @
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "ten"},
		{token.ASSIGN, "="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "add"},
		{token.ASSIGN, "="},
		{token.FUNCTION, "fn"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "result"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.COMMA, ","},
		{token.IDENT, "ten"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.BANG, "!"},
		{token.MINUS, "-"},
		{token.SLASH, "/"},
		{token.ASTERISK, "*"},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.INT, "5"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.GT, ">"},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.INT, "5"},
		{token.LT_EQ, "<="},
		{token.INT, "10"},
		{token.GT_EQ, ">="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.INT, "5"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELIF, "elif"},
		{token.LPAREN, "("},
		{token.INT, "1"},
		{token.EQ, "=="},
		{token.INT, "2"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.BREAK, "break"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.INT, "10"},
		{token.EQ, "=="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.INT, "10"},
		{token.NOT_EQ, "!="},
		{token.INT, "9"},
		{token.SEMICOLON, ";"},
		{token.TRUE, "true"},
		{token.LOGICAL_AND, "&&"},
		{token.FALSE, "false"},
		{token.LOGICAL_OR, "||"},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.PLUS_EQ, "+="},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.MINUS_EQ, "-="},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.ASTERISK_EQ, "*="},
		{token.INT, "2"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.SLASH_EQ, "/="},
		{token.INT, "2"},
		{token.SEMICOLON, ";"},
		{token.STRING, "foobar"},
		{token.STRING, "foo bar"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.LBRACE, "{"},
		{token.STRING, "foo"},
		{token.COLON, ":"},
		{token.STRING, "bar"},
		{token.RBRACE, "}"},
		{token.FLOAT, "1.5f"},
		{token.DOUBLE, "2.25d"},
		{token.FLOAT, "1.f"},
		{token.DOUBLE, "3.d"},
		{token.DOUBLE, "4.5"},
		{token.FOR, "for"},
		{token.LPAREN, "("},
		{token.LET, "let"},
		{token.IDENT, "i"},
		{token.ASSIGN, "="},
		{token.INT, "0"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "i"},
		{token.LT, "<"},
		{token.INT, "3"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "i"},
		{token.PLUS_EQ, "+="},
		{token.INT, "1"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.IDENT, "mod"},
		{token.PERIOD, "."},
		{token.IDENT, "fun"},
		{token.ILLEGAL, "&"},
		{token.ILLEGAL, "@"},
		{token.EOF, ""},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestUnterminatedInput(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{`"abc`, []token.Token{{Type: token.STRING, Literal: "abc"}, {Type: token.EOF}}},
		{`1 ## never closed`, []token.Token{{Type: token.INT, Literal: "1"}, {Type: token.EOF}}},
		{`# only a comment`, []token.Token{{Type: token.EOF}}},
		{`1.x`, []token.Token{{Type: token.INT, Literal: "1"}, {Type: token.PERIOD, Literal: "."}, {Type: token.IDENT, Literal: "x"}, {Type: token.EOF}}},
	}

	for _, tt := range tests {
		l := New(tt.input)
		for i, want := range tt.expected {
			got := l.NextToken()
			if got.Type != want.Type || got.Literal != want.Literal {
				t.Errorf("input %q token %d: expected %s(%q), got %s(%q)",
					tt.input, i, want.Type, want.Literal, got.Type, got.Literal)
			}
		}
	}
}

func TestTokenPositions(t *testing.T) {
	l := New("let x\n  = 10")
	expected := []int{0, 4, 8, 10}
	for i, pos := range expected {
		tok := l.NextToken()
		if tok.Position != pos {
			t.Errorf("token %d (%q): expected position %d, got %d", i, tok.Literal, pos, tok.Position)
		}
	}
}
