package stdlib

// Console-API routines for the windows target. Arguments arrive in the
// Microsoft x64 registers rcx, rdx, r8, r9; results return in rax. Every
// routine that calls into kernel32 keeps the required 32 bytes of shadow
// space below its call.
var windowsSymbols = []*Symbol{
	{
		Name:    "init_stdio",
		BSS:     []string{"_stdout_handle resq 1", "_stdin_handle resq 1"},
		Externs: []string{"GetStdHandle"},
		Text: `_init_stdio:
    push rbp
    mov rbp, rsp
    sub rsp, 32
    cmp qword [rel _stdout_handle], 0
    jne .done
    mov rcx, -11
    call GetStdHandle
    mov [rel _stdout_handle], rax
    mov rcx, -10
    call GetStdHandle
    mov [rel _stdin_handle], rax
.done:
    add rsp, 32
    pop rbp
    ret`,
	},
	{
		Name: "strlen",
		Text: `_strlen:
    xor rax, rax
.count:
    cmp byte [rcx + rax], 0
    je .done
    inc rax
    jmp .count
.done:
    ret`,
	},
	{
		Name:     "print",
		Requires: []string{"init_stdio", "strlen"},
		BSS:      []string{"_bytes_written resq 1"},
		Externs:  []string{"WriteConsoleA"},
		Text: `_print:
    push rbp
    mov rbp, rsp
    push r12
    push r13
    sub rsp, 48
    mov r12, rcx
    call _init_stdio
    mov rcx, r12
    call _strlen
    mov r13, rax
    test r13, r13
    jz .done
    mov rcx, [rel _stdout_handle]
    mov rdx, r12
    mov r8, r13
    lea r9, [rel _bytes_written]
    mov qword [rsp + 32], 0
    call WriteConsoleA
.done:
    add rsp, 48
    pop r13
    pop r12
    pop rbp
    ret`,
	},
	{
		Name:     "printint",
		Requires: []string{"print"},
		BSS:      []string{"_printint_buf resb 33"},
		Text: `_printint:
    push rbp
    mov rbp, rsp
    sub rsp, 32
    mov rax, rcx
    lea r10, [rel _printint_buf]
    add r10, 31
    xor r11, r11
    xor r9, r9
    test rax, rax
    jns .digits
    mov r9, 1
    neg rax
.digits:
    mov r8, 10
.next:
    xor rdx, rdx
    div r8
    add dl, '0'
    mov [r10], dl
    dec r10
    inc r11
    test rax, rax
    jnz .next
    test r9, r9
    jz .write
    mov byte [r10], '-'
    dec r10
.write:
    mov byte [rel _printint_buf + 32], 0
    lea rcx, [r10 + 1]
    call _print
    add rsp, 32
    pop rbp
    ret`,
	},
	{
		Name:     "println",
		Requires: []string{"printint", "print"},
		Data:     []string{"_nl_str db 10, 0"},
		Text: `_println:
    push rbp
    mov rbp, rsp
    sub rsp, 32
    call _printint
    lea rcx, [rel _nl_str]
    call _print
    add rsp, 32
    pop rbp
    ret`,
	},
	{
		Name:     "scan",
		Requires: []string{"init_stdio"},
		BSS:      []string{"_bytes_read resq 1"},
		Externs:  []string{"ReadConsoleA"},
		Text: `_scan:
    push rbp
    mov rbp, rsp
    push r12
    push r13
    sub rsp, 48
    mov r12, rcx
    mov r13, rdx
    call _init_stdio
    mov rcx, [rel _stdin_handle]
    mov rdx, r12
    mov r8, r13
    lea r9, [rel _bytes_read]
    mov qword [rsp + 32], 0
    call ReadConsoleA
    mov rax, [rel _bytes_read]
    test rax, rax
    jz .empty
    lea rcx, [r12 + rax - 1]
.trim:
    cmp rcx, r12
    jb .empty
    mov dl, [rcx]
    cmp dl, 13
    je .strip
    cmp dl, 10
    je .strip
    jmp .terminate
.strip:
    dec rcx
    jmp .trim
.terminate:
    mov byte [rcx + 1], 0
    jmp .done
.empty:
    mov byte [r12], 0
.done:
    add rsp, 48
    pop r13
    pop r12
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
    push r12
    sub rsp, 40
    mov r12, rcx
    lea rcx, [rel _scanint_buf]
    mov rdx, 32
    call _scan
    lea r8, [rel _scanint_buf]
    xor rax, rax
    xor r9, r9
    cmp byte [r8], '-'
    jne .parse
    mov r9, 1
    inc r8
.parse:
    movzx rdx, byte [r8]
    cmp dl, '0'
    jb .store
    cmp dl, '9'
    ja .store
    imul rax, rax, 10
    sub dl, '0'
    add rax, rdx
    inc r8
    jmp .parse
.store:
    test r9, r9
    jz .positive
    neg rax
.positive:
    mov [r12], rax
    add rsp, 40
    pop r12
    pop rbp
    ret`,
	},
	{
		Name: "strcpy",
		Text: `_strcpy:
    xor r8, r8
.copy:
    mov al, [rdx + r8]
    mov [rcx + r8], al
    inc r8
    test al, al
    jnz .copy
    ret`,
	},
	{
		Name: "strcmp",
		Text: `_strcmp:
    xor r8, r8
.next:
    movzx rax, byte [rcx + r8]
    movzx r9, byte [rdx + r8]
    cmp al, r9b
    jne .diff
    test al, al
    je .equal
    inc r8
    jmp .next
.diff:
    sub rax, r9
    ret
.equal:
    xor rax, rax
    ret`,
	},
	{
		Name:     "strcat",
		Requires: []string{"strlen"},
		Text: `_strcat:
    push rcx
    push rdx
    call _strlen
    pop rdx
    pop rcx
    add rcx, rax
    xor r8, r8
.copy:
    mov al, [rdx + r8]
    mov [rcx + r8], al
    inc r8
    test al, al
    jnz .copy
    ret`,
	},
	{
		Name: "abs",
		Text: `_abs:
    mov rax, rcx
    test rax, rax
    jns .done
    neg rax
.done:
    ret`,
	},
	{
		Name: "min",
		Text: `_min:
    mov rax, rcx
    cmp rdx, rax
    jge .done
    mov rax, rdx
.done:
    ret`,
	},
	{
		Name: "max",
		Text: `_max:
    mov rax, rcx
    cmp rdx, rax
    jle .done
    mov rax, rdx
.done:
    ret`,
	},
	{
		Name: "pow",
		Text: `_pow:
    mov rax, 1
    test rdx, rdx
    jle .done
.mul:
    imul rax, rcx
    dec rdx
    jnz .mul
.done:
    ret`,
	},
	{
		Name: "arraysum",
		Text: `_arraysum:
    xor rax, rax
    xor r8, r8
.next:
    cmp r8, rdx
    jge .done
    add rax, [rcx + r8*8]
    inc r8
    jmp .next
.done:
    ret`,
	},
	{
		Name: "arrayfill",
		Text: `_arrayfill:
    xor r9, r9
.next:
    cmp r9, rdx
    jge .done
    mov [rcx + r9*8], r8
    inc r9
    jmp .next
.done:
    ret`,
	},
	{
		Name: "arraycopy",
		Text: `_arraycopy:
    xor r9, r9
.next:
    cmp r9, r8
    jge .done
    mov rax, [rdx + r9*8]
    mov [rcx + r9*8], rax
    inc r9
    jmp .next
.done:
    ret`,
	},
	{
		Name: "memset",
		Text: `_memset:
    xor r9, r9
    mov rax, rdx
.next:
    cmp r9, r8
    jge .done
    mov [rcx + r9], al
    inc r9
    jmp .next
.done:
    ret`,
	},
	{
		Name: "memcpy",
		Text: `_memcpy:
    xor r9, r9
.next:
    cmp r9, r8
    jge .done
    mov al, [rdx + r9]
    mov [rcx + r9], al
    inc r9
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
		Name:    "sleep",
		Externs: []string{"Sleep"},
		Text: `_sleep:
    sub rsp, 40
    call Sleep
    add rsp, 40
    ret`,
	},
	{
		Name:    "exit",
		Externs: []string{"ExitProcess"},
		Text: `_exit:
    sub rsp, 40
    call ExitProcess`,
	},
}
