package repl

const hint = "Type `h` or `help` in any case to display help."

const header = "`currconv`: Bank of Russia daily rates converter.\n" + hint

const helpText = `1   exit, q, quit - terminates the program.

2   h, help - displays this text (a list of available commands).

3   l, list - displays a list of available currencies.

4   update [_actual_date_] - updates the rates file with currency rates
            actual for the latest day, not exceeding _actual_date_;
        Remark 1: the required format for _actual_date_ is dd.MM.yyyy;
        Remark 2: _actual_date_ is an optional parameter; its default
                value is "today" (the day when the command was called);
        Example: UpDaTe 01.02.2003

5   load - loads all currencies from the rates file and, if succeed,
           replaces the old ones.

6   reload [_actual_date_] - equals to "update [_actual_date_]" and
            "load" commands called one after another;
        Remarks 1 & 2: see remarks 1 & 2 for "update [_actual_date_]".

7   _amount_ _char_code_from_ {to / -> / =>} _char_code_to_ -
            converts _amount_ units of currency _char_code_from_ to
            currency _char_code_to_;
        Remark 1: _amount_ must be a valid real number; the decimal
                separator can be either a dot or a comma;
        Remark 2: _char_code_from_ and _char_code_to_ must consist of
                3 Latin letters;
        Example 1: 19999.99 rub -> kzt
        Example 2: 0,25 USd To JPy

8   _char_code_from_ {to / -> / =>} _char_code_to_ - calculates the
            rate of currency _char_code_from_ in currency _char_code_to_;
        Remark 1: equals to "1 _char_code_from_ {to / -> / =>}
                _char_code_to_";
        Remark 2: see remark 2 for the previous command;
        Example 1: BYN TO RUB
        Example 2: rSd => tRy
`
