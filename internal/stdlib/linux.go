package stdlib

// Syscall-based routines for the linux target. Arguments arrive in the
// System V registers rdi, rsi, rdx, rcx; results return in rax.
var linuxSymbols = []*Symbol{
	{
		Name: "strlen",
		Text: `_strlen:
    xor rax, rax
.count:
    cmp byte [rdi + rax], 0
    je .done
    inc rax
    jmp .count
.done:
    ret`,
	},
	{
		Name:     "print",
		Requires: []string{"strlen"},
		Text: `_print:
    push rbp
    mov rbp, rsp
    push rdi
    call _strlen
    pop rdi
    mov rdx, rax
    test rdx, rdx
    jz .done
    mov rsi, rdi
    mov rdi, 1
    mov rax, 1
    syscall
.done:
    pop rbp
    ret`,
	},
	{
		Name: "printint",
		BSS:  []string{"_printint_buf resb 32"},
		Text: `_printint:
    push rbp
    mov rbp, rsp
    mov rax, rdi
    lea r9, [rel _printint_buf]
    add r9, 31
    xor r10, r10
    xor r8, r8
    test rax, rax
    jns .digits
    mov r8, 1
    neg rax
.digits:
    mov rcx, 10
.next:
    xor rdx, rdx
    div rcx
    add dl, '0'
    mov [r9], dl
    dec r9
    inc r10
    test rax, rax
    jnz .next
    test r8, r8
    jz .write
    mov byte [r9], '-'
    dec r9
    inc r10
.write:
    lea rsi, [r9 + 1]
    mov rdx, r10
    mov rdi, 1
    mov rax, 1
    syscall
    pop rbp
    ret`,
	},
	{
		Name:     "println",
		Requires: []string{"printint"},
		Data:     []string{"_nl db 10"},
		Text: `_println:
    push rbp
    mov rbp, rsp
    call _printint
    mov rdi, 1
    lea rsi, [rel _nl]
    mov rdx, 1
    mov rax, 1
    syscall
    pop rbp
    ret`,
	},
	{
		Name: "scan",
		Text: `_scan:
    push rbp
    mov rbp, rsp
    mov rdx, rsi
    mov rsi, rdi
    xor rdi, rdi
    xor rax, rax
    syscall
    test rax, rax
    jle .empty
    lea rcx, [rsi + rax - 1]
    cmp byte [rcx], 10
    jne .keep
    mov byte [rcx], 0
    pop rbp
    ret
.keep:
    mov byte [rsi + rax], 0
    pop rbp
    ret
.empty:
    mov byte [rsi], 0
    pop rbp
    ret`,
	},
	{
		Name:     "scanint",
		Requires: []string{"scan"},
		BSS:      []string{"_scanint_buf resb 32"},
		Text: `_scanint:
    push rbp
    mov rbp, rsp
    push rdi
    lea rdi, [rel _scanint_buf]
    mov rsi, 32
    call _scan
    lea rsi, [rel _scanint_buf]
    xor rax, rax
    xor rcx, rcx
    cmp byte [rsi], '-'
    jne .parse
    mov rcx, 1
    inc rsi
.parse:
    movzx rdx, byte [rsi]
    cmp dl, '0'
    jb .store
    cmp dl, '9'
    ja .store
    imul rax, rax, 10
    sub dl, '0'
    add rax, rdx
    inc rsi
    jmp .parse
.store:
    test rcx, rcx
    jz .positive
    neg rax
.positive:
    pop rdi
    mov [rdi], rax
    pop rbp
    ret`,
	},
	{
		Name: "strcpy",
		Text: `_strcpy:
    xor rcx, rcx
.copy:
    mov al, [rsi + rcx]
    mov [rdi + rcx], al
    inc rcx
    test al, al
    jnz .copy
    ret`,
	},
	{
		Name: "strcmp",
		Text: `_strcmp:
    xor rcx, rcx
.next:
    movzx rax, byte [rdi + rcx]
    movzx rdx, byte [rsi + rcx]
    cmp al, dl
    jne .diff
    test al, al
    je .equal
    inc rcx
    jmp .next
.diff:
    sub rax, rdx
    ret
.equal:
    xor rax, rax
    ret`,
	},
	{
		Name:     "strcat",
		Requires: []string{"strlen"},
		Text: `_strcat:
    push rdi
    push rsi
    call _strlen
    pop rsi
    pop rdi
    add rdi, rax
    xor rcx, rcx
.copy:
    mov al, [rsi + rcx]
    mov [rdi + rcx], al
    inc rcx
    test al, al
    jnz .copy
    ret`,
	},
	{
		Name: "abs",
		Text: `_abs:
    mov rax, rdi
    test rax, rax
    jns .done
    neg rax
.done:
    ret`,
	},
	{
		Name: "min",
		Text: `_min:
    mov rax, rdi
    cmp rsi, rax
    jge .done
    mov rax, rsi
.done:
    ret`,
	},
	{
		Name: "max",
		Text: `_max:
    mov rax, rdi
    cmp rsi, rax
    jle .done
    mov rax, rsi
.done:
    ret`,
	},
	{
		Name: "pow",
		Text: `_pow:
    mov rax, 1
    test rsi, rsi
    jle .done
.mul:
    imul rax, rdi
    dec rsi
    jnz .mul
.done:
    ret`,
	},
	{
		Name: "arraysum",
		Text: `_arraysum:
    xor rax, rax
    xor rcx, rcx
.next:
    cmp rcx, rsi
    jge .done
    add rax, [rdi + rcx*8]
    inc rcx
    jmp .next
.done:
    ret`,
	},
	{
		Name: "arrayfill",
		Text: `_arrayfill:
    xor rcx, rcx
.next:
    cmp rcx, rsi
    jge .done
    mov [rdi + rcx*8], rdx
    inc rcx
    jmp .next
.done:
    ret`,
	},
	{
		Name: "arraycopy",
		Text: `_arraycopy:
    xor rcx, rcx
.next:
    cmp rcx, rdx
    jge .done
    mov rax, [rsi + rcx*8]
    mov [rdi + rcx*8], rax
    inc rcx
    jmp .next
.done:
    ret`,
	},
	{
		Name: "memset",
		Text: `_memset:
    xor rcx, rcx
    mov rax, rsi
.next:
    cmp rcx, rdx
    jge .done
    mov [rdi + rcx], al
    inc rcx
    jmp .next
.done:
    ret`,
	},
	{
		Name: "memcpy",
		Text: `_memcpy:
    xor rcx, rcx
.next:
    cmp rcx, rdx
    jge .done
    mov al, [rsi + rcx]
    mov [rdi + rcx], al
    inc rcx
    jmp .next
.done:
    ret`,
	},
	{
		Name: "rand",
		BSS:  []string{"_rand_state resq 1"},
		Text: `_rand:
    mov rax, [rel _rand_state]
    test rax, rax
    jnz .step
    rdtsc
    shl rdx, 32
    or rax, rdx
    or rax, 1
.step:
    mov rcx, rax
    shl rcx, 13
    xor rax, rcx
    mov rcx, rax
    shr rcx, 7
    xor rax, rcx
    mov rcx, rax
    shl rcx, 17
    xor rax, rcx
    mov [rel _rand_state], rax
    ret`,
	},
	{
		Name: "sleep",
		Text: `_sleep:
    push rbp
    mov rbp, rsp
    sub rsp, 16
    mov rax, rdi
    xor rdx, rdx
    mov rcx, 1000
    div rcx
    mov [rsp], rax
    imul rdx, rdx, 1000000
    mov [rsp + 8], rdx
    mov rdi, rsp
    xor rsi, rsi
    mov rax, 35
    syscall
    add rsp, 16
    pop rbp
    ret`,
	},
	{
		Name: "exit",
		Text: `_exit:
    mov rax, 60
    syscall`,
	},
}
